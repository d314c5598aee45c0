package dump

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/naughty-agents/protocol-contract/ledger"
)

// IterateDumps iterates over all dumps collected by the Creator model in the
// specified directory, and passes ID and Reader of each dump into f.
func IterateDumps(dir string, f func(ID, *Reader)) error {
	return filepath.WalkDir(dir, func(path string, d fs.DirEntry, e error) error {
		if errors.Is(e, fs.ErrNotExist) {
			return nil
		}
		if e != nil {
			return e
		}

		if d.IsDir() {
			if path != dir {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if !strings.HasSuffix(name, sep+statesFileSuffix) {
			return nil
		}

		var id ID

		err := id.decodeFileName(name)
		if err != nil {
			return fmt.Errorf("decode dump ID from file name '%s': %w", name, err)
		}

		r, err := Open(dir, id)
		if err != nil {
			return fmt.Errorf("open dump '%s': %w", id, err)
		}

		f(id, r)

		return nil
	})
}

// Open reads the dump with the given ID from the specified directory.
func Open(dir string, id ID) (*Reader, error) {
	var streams dumpStreams

	err := initDumpStreams(&streams, dir, id, true)
	if err != nil {
		return nil, err
	}
	defer streams.close()

	var r Reader

	err = r.fromDumpStreams(streams.contracts, streams.storageItems)
	if err != nil {
		return nil, err
	}

	return &r, nil
}

type kv struct{ k, v []byte }

// Reader reads components collected in the superior dump. Reader implements
// ledger.SnapshotSource.
type Reader struct {
	states   []dumpContractState
	names    []string
	mStorage map[string][]kv
}

var _ ledger.SnapshotSource = (*Reader)(nil)

func (x *Reader) fromDumpStreams(rContracts, rStorageItems io.Reader) error {
	err := json.NewDecoder(rContracts).Decode(&x.states)
	if err != nil {
		return fmt.Errorf("decode component states from JSON: %w", err)
	}

	var rec []string

	_csv := csv.NewReader(rStorageItems)
	_csv.FieldsPerRecord = 3
	_csv.ReuseRecord = true

	x.mStorage = make(map[string][]kv)
	x.names = x.names[:0]

	for {
		rec, err = _csv.Read()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read next CSV record: %w", err)
		}

		var _kv kv

		// out-of-range safety guaranteed by csv settings
		_kv.k, err = _encoding.DecodeString(rec[1])
		if err != nil {
			return fmt.Errorf("decode storage item key: %w", err)
		}

		_kv.v, err = _encoding.DecodeString(rec[2])
		if err != nil {
			return fmt.Errorf("decode storage item value: %w", err)
		}

		if _, ok := x.mStorage[rec[0]]; !ok {
			x.names = append(x.names, rec[0])
		}

		x.mStorage[rec[0]] = append(x.mStorage[rec[0]], _kv)
	}
}

// IterateContractStates iterates over all components from the superior dump
// and passes their states into f.
func (x *Reader) IterateContractStates(f func(name string, _state ledger.ContractState)) error {
	for i := range x.states {
		f(x.states[i].Name, x.states[i].State)
	}
	return nil
}

// IterateContractStorages iterates over all components from the superior
// dump and passes their storage items into f in the dumped order.
func (x *Reader) IterateContractStorages(f func(name string, key, value []byte)) error {
	for _, name := range x.names {
		kvs := x.mStorage[name]
		for i := range kvs {
			f(name, kvs[i].k, kvs[i].v)
		}
	}
	return nil
}
