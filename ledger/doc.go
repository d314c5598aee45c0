/*
Package ledger provides execution environment for the protocol components.

Ledger hosts a set of deployed components over a single key-value store
(in-memory, BoltDB or LevelDB backend of the neo-go storage). Every
operation runs as an invocation: it gets its own Context which carries
the sender of the operation, the currently executing component and the
component which called it. All writes of the invocation are accumulated in
a memory cache and reach the store only if the invocation succeeds, so a
failed operation leaves no state behind. Invocations are serialized: the
first one committed wins.

Components communicate through Context.Enter: callee observes the caller
as the calling script hash and may restrict its methods to particular
callers.

Notifications emitted during the invocation are returned in the Result and
appended to the persisted audit log in emission order. Failed invocations
emit nothing.
*/
package ledger

/*
Ledger storage model.

Current conventions:
 <hash>: 20-byte big-endian component address
 <index>: 8-byte big-endian unsigned integer
 <id>: 4-byte little-endian signed component ID

# Summary
Key-value storage format:
 - 0x08<hash> -> ContractState
   state of the deployed component
 - 0x09<name> -> <hash>
   address of the component deployed with the name
 - 0x0a -> int
   next component ID
 - 0x0c<index> -> Event
   audit log entry
 - 0x0d -> int
   number of audit log entries
 - 0x0e -> int
   number of committed invocations
 - 0x70<id><key> -> []byte
   component storage items
*/
