/*
Package oracle contains implementation of the ReviewOracle component.

ReviewOracle runs human review of agent actions. An active member of the web
of trust (or the configured security module) flags an action of Unknown
status: new review task is created and the action becomes Flagged in the
ActionRegistry. Active members cast one ballot per task. Once the number of
supporting ballots reaches the quorum, anyone may resolve the task, and the
action becomes Blacklisted. ReviewOracle is the only component allowed to
change action statuses.

# Contract notifications

ActionFlagged notification. This notification is produced when new review
task is created by invoking FlagActionForReview method.

	ActionFlagged
	  - name: taskId
	    type: Integer
	  - name: actionHash
	    type: Hash256

VoteCast notification. This notification is produced when an active member
votes by invoking CastBlacklistVote method.

	VoteCast
	  - name: taskId
	    type: Integer
	  - name: voter
	    type: Hash160
	  - name: support
	    type: Boolean

TaskResolved notification. This notification is produced when the task is
resolved by invoking ResolveBlacklistVote method. Outcome is the resulting
status of the action.

	TaskResolved
	  - name: taskId
	    type: Integer
	  - name: outcome
	    type: Integer
*/
package oracle

/*
Contract storage model.

Current conventions:
 <id>: 8-byte big-endian task ID
 <voter>: 20-byte big-endian member address

# Summary
Key-value storage format:
 - 'config' -> Serialize(Config)
   parameters set on deployment incl. TrustLedger and ActionRegistry
   addresses
 - 'version' -> int
   version of the component state
 - 'nextTask' -> int
   ID of the next task, tasks are numbered from 0
 - 't<id>' -> Serialize(Task)
   review task
 - 'b<id><voter>' -> 1-byte support flag
   ballot of the member for the task
*/
