// Package interchange converts between domain scenes and the portable JSON
// payload cards are stored and transmitted as.
//
// The decoder is deliberately lenient. It accepts three payload shapes:
//
//   - a bare list of objects, with no envelope;
//   - a split envelope {"vector": ..., "metadata": {...}} where either part
//     may be missing and "vector" may be a list, a document or a JSON string;
//   - a plain document {"width", "height", "background", "objects"}.
//
// Missing fields on an object get editor defaults, a missing type tag means
// text, and fields this version does not know are carried through
// Primitive.Extra verbatim so newer producers survive a round trip.
//
// The encoder normalises transient per-character style state before
// writing and reports ErrUnserialisable only when a primitive cannot be
// represented at all; callers then fall back to a raster-only save.
package interchange
