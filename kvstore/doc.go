// Generic key-value storage used for moderation history, audit logs, and freeze markers.
//
// Values are opaque JSON documents addressed by string keys. There is no transaction, compare-and-swap, or atomic increment: every component built on a Store does plain read-modify-write, and lost updates under concurrent writers for the same key are accepted.
//
// Includes an interface and implementations using in-process memory, redis, pebble, bbolt, and SQL (via gorm).
package kvstore
