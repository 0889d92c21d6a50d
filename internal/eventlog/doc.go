// Package eventlog writes rotating, append-only event logs to the card.
//
// There are four channels, each bound to a fixed file:
//
//	Boot        /boot.log         boot start, setup steps, boot summary
//	Battery     /battery.log      voltage readings
//	Connection  /connection.log   radio link events and counters
//	Error       /error.log        faults and crashes
//
// Every record is a single line; line breaks in caller text become spaces:
//
//	[12345ms] CRITICAL - Battery | Voltage: 13.10V | Percent: 5% | [CRITICAL]
//
// Before each append the channel is rotated when its file exceeds the size
// limit (1 MiB by default): the previous backup <path>.1 is deleted and the
// active file renamed to take its place. Only one older generation is kept.
//
// The timestamp, free-heap and chip fields come from injected collaborators
// (Clock, HeapReader, Chip) so tests and host tools control them.
package eventlog
