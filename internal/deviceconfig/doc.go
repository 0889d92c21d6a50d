// Package deviceconfig persists the device configuration profile on the card.
//
// A Store manages exactly one of two profiles, chosen at construction:
//   - Main: display backlight, touch calibration, joystick, radio peer address
//     and timing, battery calibration and serial debug flag
//   - Peer: radio main-device address, link timeout, battery calibration and
//     serial debug flag
//
// # Startup
//
//	store := deviceconfig.NewStore(backend, deviceconfig.KindMain, deviceconfig.Options{Logger: log})
//	outcome, err := store.Begin()
//	if err != nil {
//	    // card not mounted; store still holds compiled defaults
//	}
//	backlight := store.Main().BacklightDefault
//
// Begin reads the document at /config_main.json or /config_peer.json. A
// missing, unreadable or unparsable document is replaced by compiled
// defaults. Otherwise every key is read individually and falls back to its
// default when absent or of the wrong type.
//
// # Self-healing validation
//
// Validation never rejects a profile. Out-of-range field groups are reset to
// their defaults in place and the corrected profile is written back:
//   - backlight outside 0-255
//   - touch bounds with min >= max on either axis (all four reset together)
//   - link timeout outside 1000-30000 ms
//   - battery calibration outside (0, 2.0]
//   - malformed MAC addresses (well-formed ones are canonicalised)
//
// The Outcome returned by Begin tells whether the stored document was used
// as-is, repaired, or initialised from defaults.
//
// # Error Handling
//
// Errors are *storage.Error values; use storage.IsUnavailable,
// storage.IsParseFailure, storage.IsFieldInvalid and friends to classify.
package deviceconfig
