// Typed moderation log entries, and tolerant decoding of whatever happens to be stored under a log key.
//
// Stored logs have taken several shapes over time: a bare JSON array of numeric millisecond timestamps, and arrays of entry objects (`{"t":..., "a":..., "u":..., "r":..., "user":...}`). Decoding never fails; anything unrecognized is dropped.
package actionlog
