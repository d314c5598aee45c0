package dump

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/naughty-agents/protocol-contract/ledger"
)

// Creator dumps states of the protocol components. Output file format:
//
//	'<label>-<height>-contracts.json': JSON array of components' states
//	'<label>-<height>-storage.csv': CSV of components' storages
//
// Storage CSV are 'name,key,value' where name stands for component name and
// binary key-value are base64-encoded.
//
// Use IterateDumps or Open to access existing dumps.
type Creator struct {
	dumpStreams

	contracts []dumpContractState

	storageItemsCSV *csv.Writer
}

// NewCreator returns Creator which dumps components into given directory. The
// dump is identified by specified ID. Resulting Creator should be closed when
// finished working with it.
//
// NewCreator fails if dump with provided ID already exists.
func NewCreator(dir string, id ID) (*Creator, error) {
	var res Creator

	err := initDumpStreams(&res.dumpStreams, dir, id, false)
	if err != nil {
		return nil, err
	}

	res.storageItemsCSV = csv.NewWriter(res.dumpStreams.storageItems)

	return &res, nil
}

// AddContract adds given state of the named component to the resulting dump
// and returns StorageWriter for the component storage. After all needed
// components are added, they should be flushed via Flush method.
func (x *Creator) AddContract(name string, st ledger.ContractState) *StorageWriter {
	x.contracts = append(x.contracts, dumpContractState{
		Name:  name,
		State: st,
	})

	return &StorageWriter{
		name: name,
		csv:  x.storageItemsCSV,
	}
}

// Flush flushes accumulated dump to the file system.
func (x *Creator) Flush() error {
	jEnc := json.NewEncoder(x.dumpStreams.contracts)
	jEnc.SetIndent("", " ")

	err := jEnc.Encode(x.contracts)
	if err != nil {
		return fmt.Errorf("encode component states to JSON: %w", err)
	}

	x.storageItemsCSV.Flush()

	err = x.storageItemsCSV.Error()
	if err != nil {
		return fmt.Errorf("flush CSV data: %w", err)
	}

	return nil
}

// Close releases underlying resources of the Creator and makes it unusable.
func (x *Creator) Close() {
	x.close()
}

// StorageWriter writes data into the superior component's storage dump.
type StorageWriter struct {
	name string
	csv  *csv.Writer
}

// Write saves given binary key-value into the component dump as storage item.
func (x *StorageWriter) Write(key, value []byte) error {
	err := x.csv.Write([]string{
		x.name,
		_encoding.EncodeToString(key),
		_encoding.EncodeToString(value),
	})
	if err != nil {
		return fmt.Errorf("write storage item as CSV data: %w", err)
	}

	return nil
}

// DumpLedger dumps all components deployed to l into given directory and
// returns ID of the dump. Dump is labeled with the given label and the audit
// log height of l. The directory is created if needed. Invocations are
// blocked while the dump is being written.
func DumpLedger(dir, label string, l *ledger.Ledger) (ID, error) {
	id := ID{Label: label}

	err := os.MkdirAll(dir, 0o700)
	if err != nil {
		return id, fmt.Errorf("create dump directory: %w", err)
	}

	err = l.Snapshot(func(s ledger.Snapshot) error {
		id.Height = s.AuditHeight()

		contracts, err := s.Contracts()
		if err != nil {
			return fmt.Errorf("list components: %w", err)
		}

		c, err := NewCreator(dir, id)
		if err != nil {
			return err
		}
		defer c.Close()

		for i := range contracts {
			w := c.AddContract(contracts[i].Name, contracts[i])

			s.IterateStorage(contracts[i].ID, func(key, value []byte) bool {
				err = w.Write(key, value)
				return err == nil
			})
			if err != nil {
				return fmt.Errorf("dump storage of '%s': %w", contracts[i].Name, err)
			}
		}

		return c.Flush()
	})

	return id, err
}
