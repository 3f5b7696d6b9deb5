package secrets

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/liliang-cn/finsight/internal/domain"
)

func TestEnvStore_DotenvFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("FINSIGHT_TEST_SECRET=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINSIGHT_TEST_SECRET", "")
	os.Unsetenv("FINSIGHT_TEST_SECRET")

	store, err := NewEnvStore(path, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	v, err := store.Lookup("FINSIGHT_TEST_SECRET")
	if err != nil || v != "from-file" {
		t.Errorf("got %q, %v", v, err)
	}
}

func TestEnvStore_Missing(t *testing.T) {
	t.Setenv("FINSIGHT_ABSENT_SECRET", "  ")
	_, err := (&EnvStore{}).Lookup("FINSIGHT_ABSENT_SECRET")
	if !errors.Is(err, domain.ErrCredentialMissing) {
		t.Errorf("expected ErrCredentialMissing, got %v", err)
	}
	if domain.KindOf(err) != domain.KindCredentialMissing {
		t.Errorf("unexpected kind %s", domain.KindOf(err))
	}
}

func TestChain(t *testing.T) {
	chain := Chain{MapStore{}, MapStore{"GEMINI_API_KEY": "k2"}}
	v, err := chain.Lookup("GEMINI_API_KEY")
	if err != nil || v != "k2" {
		t.Errorf("got %q, %v", v, err)
	}

	_, err = Chain{MapStore{}}.Lookup("GEMINI_API_KEY")
	if !errors.Is(err, domain.ErrCredentialMissing) {
		t.Errorf("expected ErrCredentialMissing, got %v", err)
	}
}
