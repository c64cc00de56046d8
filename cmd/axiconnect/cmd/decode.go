package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/config"
	"github.com/sarchlab/axiconnect/demux"
	"github.com/sarchlab/axiconnect/internal/bustest"
	"github.com/sarchlab/axiconnect/platform"
)

var decodeCmd = &cobra.Command{
	Use:   "decode-demo",
	Short: "Send a burst to an unmapped address.",
	Long: "`decode-demo` maps a single memory region, sends one write and one " +
		"read burst outside of it and prints the responses that the " +
		"address decoder synthesizes.",
	RunE: runDecodeDemo,
}

func init() {
	rootCmd.AddCommand(decodeCmd)

	f := decodeCmd.Flags()
	f.Uint64("addr", 0xdead0000, "Unmapped address to access")
	f.Uint32("id", 0x2a, "Transaction ID")
	f.Uint8("len", 7, "Burst length minus one")
	f.Uint64("region-size", 0x10000, "Size of the mapped region at address 0")
}

func runDecodeDemo(cmd *cobra.Command, _ []string) error {
	f := cmd.Flags()
	addr, _ := f.GetUint64("addr")
	txnID, _ := f.GetUint32("id")
	burstLen, _ := f.GetUint8("len")
	size, _ := f.GetUint64("region-size")

	m := demux.NewAddressMap()
	if err := m.Add("Mem", 0, size); err != nil {
		return err
	}

	if _, mapped := m.Decode(addr); mapped {
		return fmt.Errorf("address %#x is mapped to region Mem", addr)
	}

	c := config.Default()
	c.NumPorts = 1
	c.Cycles = 1000

	if int(burstLen)+1 > c.MaxBurstBeats {
		c.MaxBurstBeats = int(burstLen) + 1
		c.BurstBeats = c.MaxBurstBeats
		c.BufferDepth = max(c.BufferDepth, c.MaxBurstBeats)
	}

	p := platform.MakeBuilder().WithConfig(c).WithAddressMap(m).Build("Platform")

	req := axi.Addr{ID: txnID, Addr: addr, Len: burstLen, Size: 3, Burst: axi.Incr}
	p.WriteInitiators[0].Enqueue(bustest.WriteBurst{Addr: req})
	p.ReadInitiators[0].Enqueue(req)

	if err := p.Run(); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, r := range p.WriteInitiators[0].Results() {
		fmt.Fprintf(out, "write %s -> B id %#x %s at cycle %d\n",
			req, r.ID, r.Resp, r.Cycle)
	}

	for _, r := range p.ReadInitiators[0].Results() {
		fmt.Fprintf(out, "read  %s -> %d R beats id %#x %s at cycle %d\n",
			req, len(r.Data), r.Addr.ID, r.Resp, r.Cycle)
	}

	if errs := p.Errors(); len(errs) > 0 {
		return fmt.Errorf("protocol error: %w", errs[0])
	}

	return nil
}
