package formstate

import (
	"os"
	"path/filepath"
	"testing"

	"shopcart-console/internal/form"

	"github.com/stretchr/testify/require"
)

func TestMissingFileIsEmpty(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "nope", "form.json"))
	require.NoError(t, err)
	require.Equal(t, form.Record{}, f.Form("shopcarts"))
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state", "form.json")
	f, err := Load(path)
	require.NoError(t, err)

	f.Put("shopcarts", form.Record{"id": "1", "customer_id": "7"})
	f.Put("pets", form.Record{"name": "rex"})
	require.NoError(t, f.Save())

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, form.Record{"id": "1", "customer_id": "7"}, loaded.Form("shopcarts"))
	require.Equal(t, form.Record{"name": "rex"}, loaded.Form("pets"))

	loaded.Put("pets", form.Record{})
	require.NoError(t, loaded.Save())
	loaded, err = Load(path)
	require.NoError(t, err)
	require.Equal(t, form.Record{}, loaded.Form("pets"))
}

func TestFormIsACopy(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "form.json"))
	require.NoError(t, err)
	f.Put("shopcarts", form.Record{"id": "1"})

	rec := f.Form("shopcarts")
	rec["id"] = "2"
	require.Equal(t, "1", f.Form("shopcarts").Get("id"))
}

func TestCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "form.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
