// Package section defines the fixed-size binary structures of an aria stream.
//
// An aria stream is a main header followed by packets. Each packet carries a
// compressed payload that, once decompressed, is a run of frames:
//
//	┌─────────────────────────────────────────────────────────┐
//	│ Main Header (40 bytes)                                  │
//	│  - magic "ARiA", version, channel layout, flags         │
//	│  - framerate, max packet size, motion radii             │
//	│  - width, height, frame count, user data                │
//	├─────────────────────────────────────────────────────────┤
//	│ Packet Header (16 bytes)                                │
//	│  - magic "VFPK", frame count, full frame count          │
//	│  - compression method, compressed size, Adler-32        │
//	├─────────────────────────────────────────────────────────┤
//	│ Compressed payload (size bytes)                         │
//	│  ┌───────────────────────────────────────────────────┐  │
//	│  │ Frame Header (32 bytes)                           │  │
//	│  │  - magic "VFRM", reference type, motion           │  │
//	│  │  - 8 intra filter modes, plane data size          │  │
//	│  ├───────────────────────────────────────────────────┤  │
//	│  │ Plane data: full planes, then half planes         │  │
//	│  └───────────────────────────────────────────────────┘  │
//	│  ... repeated frame count times                         │
//	├─────────────────────────────────────────────────────────┤
//	│ ... more packets                                        │
//	└─────────────────────────────────────────────────────────┘
//
// All integers are little-endian. Each structure offers Parse to decode and
// validate its own fields, Bytes to serialize, and Validate for the checks
// that depend on the main header.
package section
