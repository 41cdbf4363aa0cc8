package cmd

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardanlabs/certledger/business/web/errs"
	"github.com/ardanlabs/certledger/foundation/blockchain/database"
	"github.com/ardanlabs/certledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/certledger/foundation/blockchain/state"
	"github.com/ardanlabs/certledger/foundation/blockchain/storage/disk"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const abcHash = "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"

func Test_PayloadHash(t *testing.T) {
	file := filepath.Join(t.TempDir(), "cert.pdf")
	if err := os.WriteFile(file, []byte("abc"), 0600); err != nil {
		t.Fatalf("Should be able to write the certificate file: %s", err)
	}

	t.Log("Given the need to resolve a payload hash from the command line.")
	{
		h, err := payloadHash("", file)
		if err != nil || h != abcHash {
			t.Fatalf("\t%s\tShould hash the file content : %s %v", failed, h, err)
		}
		t.Logf("\t%s\tShould hash the file content.", success)

		h, err = payloadHash("  "+strings.ToUpper(abcHash)+" ", "")
		if err != nil || h != abcHash {
			t.Fatalf("\t%s\tShould normalize the hash flag : %s %v", failed, h, err)
		}
		t.Logf("\t%s\tShould normalize the hash flag.", success)

		if _, err := payloadHash(abcHash, file); err == nil {
			t.Fatalf("\t%s\tShould reject both flags together.", failed)
		}
		if _, err := payloadHash("", ""); err == nil {
			t.Fatalf("\t%s\tShould reject no flags.", failed)
		}
		if _, err := payloadHash("", filepath.Join(t.TempDir(), "missing")); err == nil {
			t.Fatalf("\t%s\tShould fail for a missing file.", failed)
		}
		t.Logf("\t%s\tShould reject bad flag combinations.", success)
	}
}

func Test_Send(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/ok":
			json.NewEncoder(w).Encode(map[string]int{"number": 7})
		case "/conflict":
			w.WriteHeader(http.StatusConflict)
			json.NewEncoder(w).Encode(errs.Response{Error: "payload hash is already sealed"})
		case "/fields":
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(errs.Response{Error: "data validation error", Fields: map[string]string{"payload_hash": "bad"}})
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	nodeURL = srv.URL
	ctx := context.Background()

	t.Log("Given the need to call a node.")
	{
		var out struct {
			Number int `json:"number"`
		}
		if err := send(ctx, http.MethodGet, "/ok", nil, &out); err != nil || out.Number != 7 {
			t.Fatalf("\t%s\tShould decode a good response : %d %v", failed, out.Number, err)
		}
		t.Logf("\t%s\tShould decode a good response.", success)

		if err := send(ctx, http.MethodPost, "/conflict", map[string]string{"payload_hash": abcHash}, nil); err == nil || err.Error() != "payload hash is already sealed" {
			t.Fatalf("\t%s\tShould return the node's error message : %v", failed, err)
		}
		t.Logf("\t%s\tShould return the node's error message.", success)

		if err := send(ctx, http.MethodPost, "/fields", nil, nil); err == nil || !strings.Contains(err.Error(), "payload_hash: bad") {
			t.Fatalf("\t%s\tShould include field errors : %v", failed, err)
		}
		t.Logf("\t%s\tShould include field errors.", success)

		if err := send(ctx, http.MethodGet, "/boom", nil, nil); err == nil || !strings.Contains(err.Error(), "500") {
			t.Fatalf("\t%s\tShould report the status when no message is sent : %v", failed, err)
		}
		t.Logf("\t%s\tShould report the status when no message is sent.", success)
	}
}

func Test_CheckLedger(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "blocks")
	genesisPath := filepath.Join(t.TempDir(), "genesis.json")

	strg, err := disk.New(dbPath)
	if err != nil {
		t.Fatalf("Should be able to open disk storage: %s", err)
	}

	st, err := state.New(state.Config{Genesis: genesis.Default(), Storage: strg})
	if err != nil {
		t.Fatalf("Should be able to construct the ledger: %s", err)
	}

	if _, err := st.SealPayload(ctx, abcHash); err != nil {
		t.Fatalf("Should be able to seal: %s", err)
	}

	t.Log("Given the need to check a ledger on disk.")
	{
		stats, err := checkLedger(ctx, dbPath, genesisPath)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to check the ledger : %s", failed, err)
		}
		if !stats.IntegrityValid || stats.TotalBlocks != 2 {
			t.Fatalf("\t%s\tShould report two valid blocks : %+v", failed, stats)
		}
		t.Logf("\t%s\tShould report two valid blocks.", success)

		path := strg.Path(2)
		data, err := os.ReadFile(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to read block 2 : %s", failed, err)
		}

		var bd database.BlockData
		if err := json.Unmarshal(data, &bd); err != nil {
			t.Fatalf("\t%s\tShould be able to decode block 2 : %s", failed, err)
		}
		bd.Header.PayloadHash = strings.Repeat("0", 64)

		data, _ = json.Marshal(bd)
		if err := os.WriteFile(path, data, 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to rewrite block 2 : %s", failed, err)
		}

		stats, err = checkLedger(ctx, dbPath, genesisPath)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to check a tampered ledger : %s", failed, err)
		}
		if stats.IntegrityValid || stats.Violation == "" {
			t.Fatalf("\t%s\tShould report the tampered block : %+v", failed, stats)
		}
		t.Logf("\t%s\tShould report the tampered block.", success)

		if _, err := checkLedger(ctx, filepath.Join(t.TempDir(), "missing"), genesisPath); err == nil {
			t.Fatalf("\t%s\tShould fail for a missing ledger.", failed)
		}
		t.Logf("\t%s\tShould fail for a missing ledger.", success)
	}
}

func Test_Short(t *testing.T) {
	if got := short(abcHash); got != "ba7816bf8f01cfea..." {
		t.Fatalf("Should cut the hash to 16 characters: %s", got)
	}
	if got := short("abc"); got != "abc" {
		t.Fatalf("Should leave short values alone: %s", got)
	}
}
