/*
Package dump provides I/O operations for collected states of the protocol
components.

Dump holds states and storages of all components deployed to the ledger, so
the protocol instance can be moved to another store, backed up or used as a
reproducible fixture in tests. Audit log is not a part of the dump.

The package works with dumps stored in the file system using human-readable
encoding.
*/
package dump
