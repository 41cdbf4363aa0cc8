package cmd

import (
	"fmt"
	"strconv"

	"github.com/ardanlabs/certledger/business/core/certificate"
	"github.com/ardanlabs/certledger/foundation/blockchain/signature"
	"github.com/pterm/pterm"
)

func printBlockRef(hash string, ref certificate.BlockRef) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)

	s := pterm.Sprintfln("payload  %s", hash) +
		pterm.Sprintfln("block    %d", ref.Number) +
		pterm.Sprintfln("hash     %s", ref.BlockHash) +
		pterm.Sprintfln("time     %s", signature.FormatTime(ref.TimeStamp)) +
		pterm.Sprintf("nonce    %d", ref.Nonce)

	pbox.WithTitle(pterm.LightGreen("|SEALED|")).WithTitleTopCenter().Println(s)
}

func printVerification(v certificate.Verification) {
	pbox := pterm.DefaultBox.WithHorizontalPadding(4).WithTopPadding(1).WithBottomPadding(1)

	title := pterm.LightRed("|NOT FOUND|")
	s := pterm.Sprintf("payload  %s", v.PayloadHash)

	if v.Verified && v.Block != nil {
		title = pterm.LightGreen("|VERIFIED|")
		s = pterm.Sprintfln("payload  %s", v.PayloadHash) +
			pterm.Sprintfln("block    %d", v.Block.Number) +
			pterm.Sprintfln("hash     %s", v.Block.BlockHash) +
			pterm.Sprintfln("time     %s", signature.FormatTime(v.Block.TimeStamp)) +
			pterm.Sprintf("nonce    %d", v.Block.Nonce)
	}

	if v.ChainValid != nil {
		chain := pterm.LightGreen("valid")
		if !*v.ChainValid {
			chain = pterm.LightRed("BROKEN")
		}
		s += pterm.Sprintf("\nchain    %s", chain)
	}

	pbox.WithTitle(title).WithTitleTopCenter().Println(s)
}

func printStats(st certificate.Stats) {
	integrity := pterm.LightGreen("valid")
	if !st.IntegrityValid {
		integrity = pterm.LightRed("BROKEN " + st.Violation)
	}

	head := "-"
	if st.HeadTimeStamp != nil {
		head = signature.FormatTime(*st.HeadTimeStamp)
	}

	pterm.DefaultTable.WithData(pterm.TableData{
		{"Total blocks", strconv.FormatUint(st.TotalBlocks, 10)},
		{"Head hash", st.HeadHash},
		{"Head time", head},
		{"Integrity", integrity},
	}).Render()
}

func printBlocks(blocks []certificate.Block) error {
	data := pterm.TableData{
		{"Number", "Hash", "Previous", "Payload", "Time", "Nonce"},
	}

	for _, b := range blocks {
		data = append(data, []string{
			strconv.FormatUint(b.Number, 10),
			short(b.BlockHash),
			short(b.PrevBlockHash),
			short(b.PayloadHash),
			signature.FormatTime(b.TimeStamp),
			strconv.FormatUint(b.Nonce, 10),
		})
	}

	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		return fmt.Errorf("rendering blocks: %w", err)
	}

	return nil
}

// short cuts a hash down to the 16 character prefix used for display.
func short(hash string) string {
	if len(hash) <= 16 {
		return hash
	}
	return hash[:16] + "..."
}
