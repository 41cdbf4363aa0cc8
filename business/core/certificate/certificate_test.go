package certificate_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/ardanlabs/certledger/foundation/blockchain/genesis"
	"github.com/ardanlabs/certledger/foundation/blockchain/state"
	"github.com/ardanlabs/certledger/foundation/blockchain/storage/memory"
	"github.com/ethereum/go-ethereum/crypto"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

const (
	pkHexKey = "fae85851bdf5c9f49923722ce38f3c1defcfd3619ef5453230a58ad805499959"
	signer   = "0xdd6B972ffcc631a62CAE1BB9d80b7ff429c8ebA4"
	hash1    = "abc1230000000000000000000000000000000000000000000000000000000def"
	hash2    = "fed3210000000000000000000000000000000000000000000000000000000cba"
)

func newCore(t *testing.T, rejectDuplicates bool) *certificate.Core {
	t.Helper()

	strg, err := memory.New()
	if err != nil {
		t.Fatalf("Should be able to construct memory storage: %s", err)
	}

	st, err := state.New(state.Config{Genesis: genesis.Default(), Storage: strg})
	if err != nil {
		t.Fatalf("Should be able to construct the ledger: %s", err)
	}

	pk, err := crypto.HexToECDSA(pkHexKey)
	if err != nil {
		t.Fatalf("Should be able to load the signing key: %s", err)
	}

	return certificate.NewCore(certificate.Config{
		Ledger:           st,
		RejectDuplicates: rejectDuplicates,
		SignerKey:        pk,
	})
}

// =============================================================================

func Test_SealVerify(t *testing.T) {
	ctx := context.Background()

	t.Log("Given the need to seal and verify certificate hashes.")
	{
		core := newCore(t, true)

		t.Log("\tWhen the ledger is empty.")
		{
			stats, err := core.Stats(ctx)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to get stats: %v", failed, err)
			}

			if stats.TotalBlocks != 0 || !stats.IntegrityValid || stats.HeadTimeStamp != nil {
				t.Fatalf("\t%s\tShould report an empty valid ledger: %+v", failed, stats)
			}
			t.Logf("\t%s\tShould report an empty valid ledger.", success)
		}

		var ref certificate.BlockRef

		t.Log("\tWhen sealing a hash.")
		{
			var err error
			ref, err = core.Seal(ctx, strings.ToUpper(hash1))
			if err != nil {
				t.Fatalf("\t%s\tShould be able to seal the hash: %v", failed, err)
			}
			t.Logf("\t%s\tShould be able to seal the hash.", success)

			if ref.Number != 2 || !strings.HasPrefix(ref.BlockHash, "00") {
				t.Fatalf("\t%s\tShould return the sealed block reference: %+v", failed, ref)
			}
			t.Logf("\t%s\tShould return the sealed block reference.", success)
		}

		t.Log("\tWhen verifying the sealed hash.")
		{
			v, err := core.Verify(ctx, hash1, true)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify: %v", failed, err)
			}

			if !v.Verified || v.Block == nil || v.Block.BlockHash != ref.BlockHash || v.Block.Nonce != ref.Nonce {
				t.Fatalf("\t%s\tShould reference the block just created: %+v", failed, v)
			}
			t.Logf("\t%s\tShould reference the block just created.", success)

			if v.ChainValid == nil || !*v.ChainValid {
				t.Fatalf("\t%s\tShould report a valid chain.", failed)
			}
			t.Logf("\t%s\tShould report a valid chain.", success)

			addr, err := certificate.CheckReceipt(v)
			if err != nil || addr != signer {
				t.Fatalf("\t%s\tShould carry a receipt signed by the node: %s, %v", failed, addr, err)
			}
			t.Logf("\t%s\tShould carry a receipt signed by the node.", success)

			v.Block.Nonce++
			if _, err := certificate.CheckReceipt(v); err == nil {
				t.Fatalf("\t%s\tShould reject a receipt with an altered nonce.", failed)
			}
			v.Block.Nonce--
			t.Logf("\t%s\tShould reject a receipt with an altered nonce.", success)

			broken := false
			v.ChainValid = &broken
			if _, err := certificate.CheckReceipt(v); err == nil {
				t.Fatalf("\t%s\tShould reject a receipt with a flipped chain result.", failed)
			}
			t.Logf("\t%s\tShould reject a receipt with a flipped chain result.", success)

			v.ChainValid = nil
			if _, err := certificate.CheckReceipt(v); err == nil {
				t.Fatalf("\t%s\tShould reject a receipt with the chain result removed.", failed)
			}
			t.Logf("\t%s\tShould reject a receipt with the chain result removed.", success)
		}

		t.Log("\tWhen verifying an unsealed hash.")
		{
			v, err := core.Verify(ctx, hash2, false)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to verify: %v", failed, err)
			}

			if v.Verified || v.Block != nil || v.ChainValid != nil {
				t.Fatalf("\t%s\tShould report not verified: %+v", failed, v)
			}
			t.Logf("\t%s\tShould report not verified.", success)
		}

		t.Log("\tWhen sealing the same hash again.")
		{
			_, err := core.Seal(ctx, hash1)
			if !errors.Is(err, certificate.ErrDuplicatePayload) {
				t.Fatalf("\t%s\tShould reject the duplicate: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the duplicate.", success)
		}

		t.Log("\tWhen the hash is malformed.")
		{
			if _, err := core.Seal(ctx, "not-a-hash"); !errors.Is(err, certificate.ErrInvalidHash) {
				t.Fatalf("\t%s\tShould reject the hash on seal: %v", failed, err)
			}
			if _, err := core.Verify(ctx, hash1[:10], false); !errors.Is(err, certificate.ErrInvalidHash) {
				t.Fatalf("\t%s\tShould reject the hash on verify: %v", failed, err)
			}
			t.Logf("\t%s\tShould reject the malformed hash.", success)
		}

		t.Log("\tWhen listing the ledger.")
		{
			stats, err := core.Stats(ctx)
			if err != nil {
				t.Fatalf("\t%s\tShould be able to get stats: %v", failed, err)
			}

			if stats.TotalBlocks != 2 || !stats.IntegrityValid || stats.HeadHash != ref.BlockHash[:16]+"..." {
				t.Fatalf("\t%s\tShould report the sealed block: %+v", failed, stats)
			}
			t.Logf("\t%s\tShould report the sealed block.", success)

			blocks, err := core.Blocks(0, 0)
			if err != nil || len(blocks) != 2 || blocks[1].PrevBlockHash != blocks[0].BlockHash {
				t.Fatalf("\t%s\tShould list the linked blocks: %v", failed, err)
			}
			t.Logf("\t%s\tShould list the linked blocks.", success)
		}
	}
}

func Test_AllowDuplicates(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, false)

	first, err := core.Seal(ctx, hash1)
	if err != nil {
		t.Fatalf("Should be able to seal: %s", err)
	}

	second, err := core.Seal(ctx, hash1)
	if err != nil {
		t.Fatalf("Should be able to seal the same hash when duplicates are allowed: %s", err)
	}

	v, err := core.Verify(ctx, hash1, false)
	if err != nil {
		t.Fatalf("Should be able to verify: %s", err)
	}

	if v.Block.Number != first.Number || v.Block.Number == second.Number {
		t.Fatalf("Should reference the lowest numbered block: %d", v.Block.Number)
	}
}

func Test_Head(t *testing.T) {
	ctx := context.Background()
	core := newCore(t, true)

	if _, err := core.Head(); !errors.Is(err, certificate.ErrEmptyLedger) {
		t.Fatalf("Should report an empty ledger before the first seal: %v", err)
	}

	ref, err := core.Seal(ctx, hash2)
	if err != nil {
		t.Fatalf("Should be able to seal: %s", err)
	}

	head, err := core.Head()
	if err != nil {
		t.Fatalf("Should be able to read the head: %s", err)
	}

	if head.Number != ref.Number || head.BlockHash != ref.BlockHash || head.PayloadHash != hash2 {
		t.Fatalf("Should return the sealed block as head: %+v", head)
	}
}
