// Package stream reads and writes aria containers.
//
// A container is a main header followed by packets. Each packet compresses
// the records of one or more consecutive frames as a single block:
//
//	+-------------+--------------------------------------------------+
//	| main header | packet header | compressed [frame][frame]...     | ...
//	+-------------+--------------------------------------------------+
//	                                 frame = frame header + plane data
//
// Encoder decides each frame's coding, buffers frame records and compresses
// full packets in the background while encoding continues. Packets always
// reach the writer in frame order. Close flushes the remaining packets and
// patches the final frame count into the main header, so the writer must be
// seekable.
//
// Decoder reverses the process strictly in frame order. Every delta coded
// frame depends on earlier reconstructions, so both sides keep an identical
// Reference state and any format violation ends the session.
package stream
