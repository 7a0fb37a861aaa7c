package key

import (
	"os"
	"path"
	"testing"

	"github.com/drand/kyber/util/random"
	"github.com/stretchr/testify/require"

	"github.com/zutxo/sigma/crypto"
	"github.com/zutxo/sigma/fs"
)

func TestKeysSaveLoad(t *testing.T) {
	tmp := t.TempDir()
	store, err := NewFileStore(tmp)
	require.NoError(t, err)
	require.Equal(t, tmp, store.(*fileStore).baseFolder)

	sch := crypto.NewSecp256k1Scheme()
	alice := NewDLogPair(sch, random.New())
	bob := NewDHTuplePair(crypto.NewEd25519Scheme(), random.New())
	require.NoError(t, store.SaveKeyPair("bob", bob))
	require.NoError(t, store.SaveKeyPair("alice", alice))

	keyFolder := path.Join(tmp, KeyFolderName)
	require.True(t, fs.FileExists(keyFolder, "alice"+privateExtension))
	require.True(t, fs.FileExists(keyFolder, "alice"+publicExtension))
	info, err := os.Stat(path.Join(keyFolder, "alice"+privateExtension))
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	loaded, err := store.LoadKeyPair("alice")
	require.NoError(t, err)
	require.Equal(t, alice.Key.String(), loaded.Key.String())
	require.True(t, alice.Public().Equal(loaded.Public()))

	pub, err := store.LoadPublic("bob")
	require.NoError(t, err)
	require.True(t, bob.Public().Equal(pub))

	names, err := store.List()
	require.NoError(t, err)
	require.Equal(t, []string{"alice", "bob"}, names)

	_, err = store.LoadKeyPair("carol")
	require.ErrorIs(t, err, ErrAbsent)
	require.Error(t, store.SaveKeyPair("../escape", alice))
}
