/*
Package id3 reads and writes ID3v2 tags.

# Supported versions

This library supports reading v2.2, v2.3 and v2.4 tags, and writing
v2.3 and v2.4 tags.

Tags read as v2.2 have their frame ids mapped to the v2.3 equivalents
and are written as v2.3. A tag is otherwise written with the version
it was read with, unless it is migrated with Update.

# Migrating between versions

Update converts frames that differ between v2.3 and v2.4. Save does
the same for the version the tag is saved as, so frames added for the
wrong version are converted too:

  - TYER, TDAT and TIME get merged into TDRC, and split again when
    going back to v2.3
  - TORY and XDOR get replaced by TDOR, TDOR by TORY
  - IPLS becomes TIPL; TIPL and TMCL are merged into IPLS
  - frames with no equivalent in the target version, such as RVAD or
    ASPI, are dropped

Frames the package doesn't understand are kept verbatim, but only
written back if the tag keeps its version.

# Accessing and manipulating frames

There are two ways to access frames: Using provided getter and setter
methods for common frames, and working directly with the FrameMap in
Tag.Frames. Frames are keyed by Frame.Key, which includes the
description or language for frames that may appear more than once.

Parsing is lenient. Frames that are malformed are dropped; parsing
stops at the first thing that isn't a frame header. Set Logging to
true to see what gets dropped.
*/
package id3
