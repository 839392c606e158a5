/*
Package session tracks in-progress walkout form sessions.

It enforces a single active editor per appointment section, serializes
draft access through reference-counted locks, and runs the elapsed-time
review timer for roles whose review time is tracked. Timer history is
append-only; stopping a timer seals an immutable record.
*/
package session
