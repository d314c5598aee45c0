/*
Package registry contains implementation of the ActionRegistry component.

ActionRegistry is the single source of truth for the status of agent actions
identified by 32-byte content hashes. Agents consult it before executing an
action. Status of the action can be changed only by the ReviewOracle bound
to the registry once by its deployer.

# Contract notifications

ReviewOracleBound notification. This notification is produced when the
deployer binds the ReviewOracle by invoking SetReviewOracleAddress method.

	ReviewOracleBound
	  - name: oracle
	    type: Hash160

ActionStatusChanged notification. This notification is produced when the
bound ReviewOracle invokes MarkFlagged or MarkBlacklisted methods.

	ActionStatusChanged
	  - name: actionHash
	    type: Hash256
	  - name: status
	    type: Integer
*/
package registry

/*
Contract storage model.

Current conventions:
 <action>: 32-byte action hash

# Summary
Key-value storage format:
 - 'owner' -> 20-byte address
   deployer allowed to bind the ReviewOracle
 - 'oracle' -> 20-byte address
   bound ReviewOracle, missing until SetReviewOracleAddress
 - 'version' -> int
   version of the component state
 - 'a<action>' -> 1-byte status
   status of the action, missing for Unknown actions
*/
