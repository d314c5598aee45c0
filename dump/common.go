package dump

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/naughty-agents/protocol-contract/ledger"
)

// ID is a unique identifier of the dump prepared according to the model
// described in the current package.
type ID struct {
	// Label of the dump source (e.g. staging, prod). May contain hyphens.
	Label string
	// Audit log height at which the state was pulled.
	Height uint64
}

// String returns hyphen-separated ID fields.
func (x ID) String() string {
	return x.Label + sep + strconv.FormatUint(x.Height, 10)
}

// ParseID decodes ID from the string produced by ID.String.
func ParseID(s string) (ID, error) {
	var id ID

	i := strings.LastIndex(s, sep)
	if i <= 0 {
		return id, fmt.Errorf("expected '%s'-separated label and height", sep)
	}

	n, err := strconv.ParseUint(s[i+1:], 10, 64)
	if err != nil {
		return id, fmt.Errorf("decode height from '%s': %w", s[i+1:], err)
	}

	id.Label = s[:i]
	id.Height = n

	return id, nil
}

// decodeFileName decodes ID fields from the dump file name.
func (x *ID) decodeFileName(name string) error {
	ss := strings.Split(name, sep)
	if len(ss) < 3 {
		return fmt.Errorf("expected '%s'-separated string with at least 3 items", sep)
	}

	n, err := strconv.ParseUint(ss[len(ss)-2], 10, 64)
	if err != nil {
		return fmt.Errorf("decode height from '%s': %w", ss[len(ss)-2], err)
	}

	x.Label = strings.Join(ss[:len(ss)-2], sep)
	x.Height = n

	return nil
}

// global encoding of binary values.
var _encoding = base64.StdEncoding

// dumpContractState is a JSON-encoded information about the dumped component.
type dumpContractState struct {
	Name  string               `json:"name"`
	State ledger.ContractState `json:"state"`
}

// dumpStreams groups data streams for components' states and storages.
type dumpStreams struct {
	contracts, storageItems io.ReadWriteCloser
}

// close closes all streams.
func (x *dumpStreams) close() {
	if x.storageItems != nil {
		_ = x.storageItems.Close()
	}
	if x.contracts != nil {
		_ = x.contracts.Close()
	}
}

const (
	// word separator used in dump file naming
	sep = "-"
	// suffix of file with components' states
	statesFileSuffix = "contracts.json"
	// suffix of file with components' storages
	storageFileSuffix = "storage.csv"
)

// initDumpStreams opens data streams for the dump files located in the
// specified directory. If read flag is set, streams are read-only. Otherwise,
// files must not exist, and streams are write only.
func initDumpStreams(d *dumpStreams, dir string, id ID, read bool) error {
	var err error

	pathStorage := filepath.Join(dir, id.String()+sep+storageFileSuffix)
	pathContracts := filepath.Join(dir, id.String()+sep+statesFileSuffix)

	var flag int
	var perm os.FileMode

	if read {
		flag = os.O_RDONLY
	} else {
		for _, p := range []string{pathStorage, pathContracts} {
			if err = checkFileNotExists(p); err != nil {
				return err
			}
		}

		flag = os.O_CREATE | os.O_WRONLY
		perm = 0600
	}

	d.storageItems, err = os.OpenFile(pathStorage, flag, perm)
	if err != nil {
		return fmt.Errorf("open file with storage items: %w", err)
	}

	d.contracts, err = os.OpenFile(pathContracts, flag, perm)
	if err != nil {
		_ = d.storageItems.Close()
		return fmt.Errorf("open file with component states: %w", err)
	}

	return nil
}

// checkFileNotExists checks that there is no file at the specified path.
func checkFileNotExists(p string) error {
	_, err := os.Stat(p)
	if !os.IsNotExist(err) {
		if err == nil {
			err = os.ErrExist
		}
		return fmt.Errorf("file '%s' absence check failed: %w", p, err)
	}
	return nil
}
