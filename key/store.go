package key

import (
	"errors"
	"fmt"
	"os"
	"path"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/zutxo/sigma/fs"
)

// KeyFolderName is the name of the folder where keys are stored, relative to
// the base folder of the store.
const KeyFolderName = "key"

const (
	privateExtension = ".private"
	publicExtension  = ".public"
)

// ErrAbsent is returned when a key is not in the store.
var ErrAbsent = errors.New("store can't find requested key")

// Tomler represents any struct that can be (un)marshalled into/from toml format
type Tomler interface {
	TOML() interface{}
	FromTOML(i interface{}) error
	TOMLValue() interface{}
}

// Store abstracts the loading and saving of named keys.
type Store interface {
	// SaveKeyPair saves the private key under name, then its public part.
	SaveKeyPair(name string, p *Pair) error
	LoadKeyPair(name string) (*Pair, error)
	LoadPublic(name string) (*Identity, error)
	// List returns the names of the stored keys, sorted.
	List() ([]string, error)
}

// fileStore stores keys as TOML files, private ones readable by the owner
// only.
type fileStore struct {
	baseFolder string
	keyFolder  string
}

// NewFileStore returns a store keeping its keys under baseFolder.
func NewFileStore(baseFolder string) (Store, error) {
	keyFolder, err := fs.CreateSecureFolder(path.Join(baseFolder, KeyFolderName))
	if err != nil {
		return nil, fmt.Errorf("key folder: %w", err)
	}
	return &fileStore{baseFolder: baseFolder, keyFolder: keyFolder}, nil
}

func (f *fileStore) privateFile(name string) string {
	return path.Join(f.keyFolder, name+privateExtension)
}

func (f *fileStore) publicFile(name string) string {
	return path.Join(f.keyFolder, name+publicExtension)
}

func (f *fileStore) SaveKeyPair(name string, p *Pair) error {
	if name == "" || strings.ContainsAny(name, `/\`) {
		return fmt.Errorf("invalid key name %q", name)
	}
	if err := save(f.privateFile(name), p, true); err != nil {
		return err
	}
	return save(f.publicFile(name), p.Public(), false)
}

func (f *fileStore) LoadKeyPair(name string) (*Pair, error) {
	p := new(Pair)
	if err := load(f.privateFile(name), p); err != nil {
		return nil, err
	}
	return p, nil
}

func (f *fileStore) LoadPublic(name string) (*Identity, error) {
	i := new(Identity)
	if err := load(f.publicFile(name), i); err != nil {
		return nil, err
	}
	return i, nil
}

func (f *fileStore) List() ([]string, error) {
	files, err := fs.Files(f.keyFolder)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, file := range files {
		base := path.Base(file)
		if strings.HasSuffix(base, privateExtension) {
			names = append(names, strings.TrimSuffix(base, privateExtension))
		}
	}
	sort.Strings(names)
	return names, nil
}

// save writes the TOML representation of t to filePath.
func save(filePath string, t Tomler, secure bool) error {
	var fd *os.File
	var err error
	if secure {
		fd, err = fs.CreateSecureFile(filePath)
	} else {
		fd, err = os.Create(filePath)
	}
	if err != nil {
		return fmt.Errorf("config: can't save %T to %s: %w", t, filePath, err)
	}
	defer fd.Close()
	return toml.NewEncoder(fd).Encode(t.TOML())
}

// load reads filePath into t.
func load(filePath string, t Tomler) error {
	if ok, _ := fs.Exists(filePath); !ok {
		return fmt.Errorf("%w: %s", ErrAbsent, filePath)
	}
	tomlValue := t.TOMLValue()
	if _, err := toml.DecodeFile(filePath, tomlValue); err != nil {
		return err
	}
	return t.FromTOML(tomlValue)
}
