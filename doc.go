// Copyright 2020 Nathan Taylor (nbtaylor@gmail.com)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy of
// this software and associated documentation files (the "Software"), to deal in
// the Software without restriction, including without limitation the rights to
// use, copy, modify, merge, publish, distribute, sublicense, and/or sell copies
// of the Software, and to permit persons to whom the Software is furnished to do
// so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

// Package xctlock implements the per-record concurrency primitives of an
// OLTP storage engine: a pair of MCS queue locks (exclusive and
// reader-writer) and the 128-bit RecordHeader that pairs one of those locks
// with a VersionWord used by an optimistic-concurrency commit protocol.
//
// Threads queue for a lock by linking their own WaiterSlot onto the lock's
// tail and spinning on a field local to that slot; the holder hands the
// lock off directly to its successor on release instead of leaving the
// lock word contended. This gives strict FIFO ordering (with a reader-
// batching exception in the shared variant) and keeps every spin on a
// private cache line.
//
// Callers that do not have a pre-allocated WaiterSlot (background threads
// without a SlotPool) use the "ownerless" entry points, which trade the
// queue discipline for a plain CAS on a reserved guest id and cannot
// coexist with queued waiters.
package xctlock
