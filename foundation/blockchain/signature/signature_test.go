package signature_test

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"testing"
	"time"

	"github.com/ardanlabs/certledger/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	from     = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	payload  = "abc1230000000000000000000000000000000000000000000000000000000def"
)

// =============================================================================

func Test_Digest(t *testing.T) {
	type table struct {
		name  string
		nonce uint64
		exp   string
	}

	tt := []table{
		{name: "nonce0", nonce: 0, exp: "92d974a58d4ec540acdcbb737ff9587535d01d8557be8e5ad1bc268aed1fd387"},
		{name: "nonce7", nonce: 7, exp: "48fbaeb756c3435122a4d43b1183930f750042f4741294c9d367db1fcec59e69"},
	}

	ts := time.Date(2024, 1, 2, 3, 4, 5, 678901000, time.UTC)

	t.Log("Given the need to reproduce block hashes byte for byte.")
	{
		for testID, tst := range tt {
			f := func(t *testing.T) {
				t.Logf("\tTest %d:\tWhen hashing a block with nonce %d.", testID, tst.nonce)
				{
					got := signature.Digest(signature.ZeroHash, payload, ts, tst.nonce)
					if got != tst.exp {
						t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got)
						t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.exp)
						t.Fatalf("\t%s\tTest %d:\tShould get back the right digest.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould get back the right digest.", success, testID)

					if again := signature.Digest(signature.ZeroHash, payload, ts, tst.nonce); again != got {
						t.Fatalf("\t%s\tTest %d:\tShould be deterministic.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould be deterministic.", success, testID)
				}
			}

			t.Run(tst.name, f)
		}
	}
}

func Test_Canonical(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 678901000, time.UTC)
	exp := `{"certificate_hash": "` + payload + `", "nonce": 7, "previous_hash": "` + signature.ZeroHash + `", "timestamp": "2024-01-02T03:04:05.678901"}`

	got := string(signature.Canonical(signature.ZeroHash, payload, ts, 7))
	if got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should get back the canonical encoding.")
	}
}

func Test_CanonicalEscaping(t *testing.T) {
	ts := time.Date(2024, 1, 2, 3, 4, 5, 678901000, time.UTC)

	exp := `{"certificate_hash": "a\"b<c>\\d", "nonce": 0, "previous_hash": "` + signature.ZeroHash + `", "timestamp": "2024-01-02T03:04:05.678901"}`

	got := string(signature.Canonical(signature.ZeroHash, `a"b<c>\d`, ts, 0))
	if got != exp {
		t.Logf("got: %s", got)
		t.Logf("exp: %s", exp)
		t.Fatalf("Should quote payload strings the way JSON does without HTML escaping.")
	}
}

func Test_CanonicalTimeZone(t *testing.T) {
	utc := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	local := utc.In(time.FixedZone("EST", -5*60*60))

	if signature.FormatTime(local) != "2024-01-02T03:04:05.000000" {
		t.Fatalf("Should render the time in UTC with fixed precision: %s", signature.FormatTime(local))
	}

	if signature.Digest(signature.ZeroHash, payload, utc, 1) != signature.Digest(signature.ZeroHash, payload, local, 1) {
		t.Fatalf("Should hash the same instant the same way regardless of zone.")
	}
}

func Test_IsHash(t *testing.T) {
	tt := []struct {
		value string
		exp   bool
	}{
		{payload, true},
		{signature.ZeroHash, true},
		{strings.ToUpper(payload), false},
		{payload[:63], false},
		{payload + "0", false},
		{"zz" + payload[2:], false},
		{"", false},
		{"0x" + payload[2:], false},
		{"genesis", false},
	}

	for _, tst := range tt {
		if got := signature.IsHash(tst.value); got != tst.exp {
			t.Errorf("IsHash(%q): got %v, exp %v", tst.value, got, tst.exp)
		}
	}
}

func Test_Signing(t *testing.T) {
	value := struct {
		PayloadHash string
		Number      uint64
	}{
		PayloadHash: payload,
		Number:      2,
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to generate a private key: %s", err)
	}

	if addr := signature.Address(pk); addr != from {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address for the key.")
	}

	sig, err := signature.Sign(value, pk)
	if err != nil {
		t.Fatalf("Should be able to sign data: %s", err)
	}

	addr, err := signature.Signer(value, sig)
	if err != nil {
		t.Fatalf("Should be able to recover the signer: %s", err)
	}

	if addr != from {
		t.Logf("got: %s", addr)
		t.Logf("exp: %s", from)
		t.Fatalf("Should get back the right address.")
	}

	value.Number = 3
	addr, err = signature.Signer(value, sig)
	if err == nil && addr == from {
		t.Fatalf("Should not recover the signer for different data.")
	}

	if _, err := signature.Signer(value, "0x1234"); err == nil {
		t.Fatalf("Should reject a short signature.")
	}
}

func Test_HashContent(t *testing.T) {
	big := strings.Repeat("certificate ", 1000)
	sum := sha256.Sum256([]byte(big))

	tt := []struct {
		name string
		data string
		exp  string
	}{
		{"empty", "", "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"},
		{"abc", "abc", "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"},
		{"multichunk", big, hex.EncodeToString(sum[:])},
	}

	t.Log("Given the need to hash certificate content.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s content.", testID, tst.name)
			{
				got, err := signature.HashContent(strings.NewReader(tst.data))
				if err != nil {
					t.Fatalf("\t%s\tTest %d:\tShould be able to hash the content : %s", failed, testID, err)
				}

				if got != tst.exp {
					t.Fatalf("\t%s\tTest %d:\tShould get the expected hash : got %s, exp %s", failed, testID, got, tst.exp)
				}
				t.Logf("\t%s\tTest %d:\tShould get the expected hash.", success, testID)
			}
		}
	}
}
