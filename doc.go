/*
Package rleseq contains a run-length encoded sequence container which,
unlike plain RLE, supports fast random access and point updates.

Data Structure Documentation

Container

A container stores a list of chunks. Each chunk is a run of identical
values and records the logical index at which it starts, so a lookup never
has to sum up repetitions from the start of the list.

    Chunk list:
    +--------------------+--------------------+-------+--------------------+
    | chunk 1 (start: 0) | chunk 2 (start: a) |  ...  | chunk n (start: z) |
    +--------------------+--------------------+-------+--------------------+

Lookups consult a small table of samples, taken at even intervals across
the chunk list, to find a chunk starting at or before the requested index.
From there they advance in strides of roughly sqrt(n) chunks (capped at 192)
and finally chunk by chunk. The table is derived data: it is rebuilt after
structural changes and never persisted.

Stream

A stream contains caller metadata followed by the chunk list. All integers
are little-endian and fixed width, records are packed without padding.

    Stream layout:
    +-------------------------+---------------------+-------------------------+-------------------------+---------+-------+---------+
    | metadata count (8 bytes)| metadata (4 bytes)* | chunk count (8 bytes)   | value count (8 bytes)   | chunk 1 |  ...  | chunk n |
    +-------------------------+---------------------+-------------------------+-------------------------+---------+-------+---------+

    Chunk:
    +-----------------------+-----------------------------+-----------------+
    | repetitions (8 bytes) | value (fixed width, 1-8 B)  | start (8 bytes) |
    +-----------------------+-----------------------------+-----------------+

The value count is always present, also for empty containers. Streams may
optionally be wrapped in a snappy, zstd or lz4 stream; readers must be
configured with the same codec.
*/
package rleseq
