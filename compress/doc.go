// Package compress implements the three ambient cache-compression tiers a
// holder may use for its own bookkeeping:
//
//   - None: passes data through unchanged; the holder does not use it.
//   - LZ4: the holder's rollback snapshot, taken inside every flush just
//     before the file is written and dropped when the flush returns; there
//     is no size-based choice between None and LZ4.
//   - Zstd: the opt-in crash-recovery debug dump, written rarely and read
//     only by a human or tool investigating a daemon crash, so ratio is
//     favored over speed.
//
// None of these tiers touch the bytes written to a document file — those
// are always raw deflate via internal/rawdeflate, selected by the format
// itself rather than by holder policy.
//
// # Algorithm selection guide
//
// | Tier | Used for                  | Reason                         |
// |------|----------------------------|---------------------------------|
// | None | not used by the holder     | pass-through, no compression    |
// | LZ4  | rollback snapshot          | cheap to produce and restore    |
// | Zstd | crash-recovery debug dump  | favors ratio, written rarely    |
//
// All three implementations are safe for concurrent use.
package compress
