/*
Package trust contains implementation of the TrustLedger component.

TrustLedger maintains the web of trust: the set of members allowed to review
agent actions. New members join only with a single-use invite code issued
by an active member and must lock a stake of at least the configured amount.
The inviter is recorded and shares responsibility for the invitee: when a
member is reported for a bad review, both the member and its direct inviter
are slashed by the configured percentages. Responsibility never propagates
beyond the direct inviter.

Genesis member is created on deployment. It has no inviter and issues the
first invite codes.

# Contract notifications

InviteCodeCreated notification. This notification is produced when an active
member issues new invite code by invoking CreateInviteCode method.

	InviteCodeCreated
	  - name: code
	    type: Hash256
	  - name: issuer
	    type: Hash160

MemberRegistered notification. This notification is produced on deployment for
the genesis member and when new member joins by invoking Register method.
Inviter is null for the genesis member.

	MemberRegistered
	  - name: member
	    type: Hash160
	  - name: inviter
	    type: Hash160
	  - name: stake
	    type: Integer

MemberSlashed notification. This notification is produced for every slashed
member when the slashing authority invokes ReportBadReview method.

	MemberSlashed
	  - name: member
	    type: Hash160
	  - name: amount
	    type: Integer
	  - name: cause
	    type: String
*/
package trust

/*
Contract storage model.

Current conventions:
 <member>: 20-byte big-endian member address
 <code>: 32-byte invite code

# Summary
Key-value storage format:
 - 'config' -> Serialize(Config)
   parameters set on deployment
 - 'version' -> int
   version of the component state
 - 'nonce' -> int
   number of issued invite codes
 - 'slashed' -> int
   total amount slashed from all members
 - 'm<member>' -> Serialize(Member)
   member record
 - 'i<code>' -> Serialize(Invite)
   invite code record

# Stake
Slashed amounts are burned: they leave member records and are only
accounted in the 'slashed' counter.
*/
