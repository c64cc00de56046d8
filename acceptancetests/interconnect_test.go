package acceptancetests

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/config"
	"github.com/sarchlab/axiconnect/crossbar"
	"github.com/sarchlab/axiconnect/demux"
	"github.com/sarchlab/axiconnect/internal/bustest"
	"github.com/sarchlab/axiconnect/platform"
	"github.com/sarchlab/axiconnect/sim/hardware"
	"github.com/sarchlab/axiconnect/sim/hooking"
	"github.com/sarchlab/axiconnect/throttle"
	"github.com/sarchlab/axiconnect/tracing"
)

// watchedFifo is the input side and the fill level of one data FIFO.
type watchedFifo struct {
	valid func() bool
	fire  func() bool
	level func() int
}

// overflowWatcher counts cycles in which a FIFO refuses an offered beat or
// holds more than its depth.
type overflowWatcher struct {
	stalls   int
	maxLevel int
	fifos    []watchedFifo
}

func watchReadFifos(p *platform.Platform) *overflowWatcher {
	w := &overflowWatcher{}
	for _, f := range p.ReadFifos {
		w.fifos = append(w.fifos, watchedFifo{
			valid: f.In.Valid.Get, fire: f.In.Fire, level: f.Level,
		})
	}

	p.Domain.AcceptHook(w)

	return w
}

func watchWriteFifos(p *platform.Platform) *overflowWatcher {
	w := &overflowWatcher{}
	for _, f := range p.WriteFifos {
		w.fifos = append(w.fifos, watchedFifo{
			valid: f.In.Valid.Get, fire: f.In.Fire, level: f.Level,
		})
	}

	p.Domain.AcceptHook(w)

	return w
}

func (w *overflowWatcher) Func(ctx hooking.HookCtx) {
	if ctx.Pos != hardware.HookPosSettled {
		return
	}

	for _, f := range w.fifos {
		if f.valid() && !f.fire() {
			w.stalls++
		}

		if f.level() > w.maxLevel {
			w.maxLevel = f.level()
		}
	}
}

// admitRecorder keeps the cycle of every admission per throttle.
type admitRecorder struct {
	domain *hardware.Domain
	cycles []uint64
	blocks int
}

func (r *admitRecorder) Func(ctx hooking.HookCtx) {
	switch ctx.Pos {
	case throttle.HookPosAdmit:
		r.cycles = append(r.cycles, r.domain.Cycle())
	case throttle.HookPosBlock:
		r.blocks++
	}
}

var _ = Describe("Interconnect", func() {
	It("should complete one 8-beat write burst from each of 4 ports", func() {
		c := config.Default()
		c.NumPorts = 4
		c.BufferDepth = 16
		c.BurstBeats = 8
		c.Cycles = 1000

		p := platform.MakeBuilder().WithConfig(c).Build("Platform")

		grants := []int{}
		p.WriteXbar.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos == crossbar.HookPosGrant {
				grants = append(grants, ctx.Item.(crossbar.GrantInfo).Port)
			}
		}))

		responses := []int{}
		p.Domain.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos != hardware.HookPosSettled {
				return
			}

			for i, in := range p.WriteXbar.Inputs {
				if in.B.Fire() {
					responses = append(responses, i)
				}
			}
		}))

		watcher := watchWriteFifos(p)

		p.EnqueueTraffic(0, 1)

		Expect(p.Run()).To(Succeed())
		Expect(p.Errors()).To(BeEmpty())
		Expect(grants).To(Equal([]int{0, 1, 2, 3}))
		Expect(responses).To(Equal(grants))
		Expect(watcher.stalls).To(BeZero())
		Expect(watcher.maxLevel).To(BeNumerically("<=", 16))

		for i, initiator := range p.WriteInitiators {
			Expect(initiator.Results()).To(HaveLen(1))
			Expect(initiator.Results()[0].Resp).To(Equal(axi.OK))

			id := uint32(i) << 16
			base := uint64(i) * 8 * 8
			for n := 0; n < 8; n++ {
				addr := base + uint64(n)*8
				Expect(p.Memory.Read(addr)).To(Equal(addr ^ uint64(id)<<48))
			}
		}
	})

	It("should gate admission on the space left in the read buffer", func() {
		c := config.Default()
		c.ReadyChance = 0.2
		c.Cycles = 20000

		p := platform.MakeBuilder().WithConfig(c).Build("Platform")

		stats := tracing.NewStatsTracer(tracing.KindIs(tracing.KindBlock))
		tracing.CollectTrace(p.Domain, stats)

		watcher := watchReadFifos(p)

		p.EnqueueTraffic(8, 0)

		Expect(p.Run()).To(Succeed())
		Expect(p.Errors()).To(BeEmpty())
		Expect(watcher.stalls).To(BeZero())
		Expect(watcher.maxLevel).To(BeNumerically("<=", c.BufferDepth))

		names := map[string]bool{}
		for _, t := range p.ReadThrottles {
			names[t.Name()] = true
			Expect(t.Credit().Value()).To(BeZero())
		}

		blocks := 0
		for _, s := range stats.Stats() {
			if names[s.Where] {
				blocks += s.Count
			}
		}

		Expect(blocks).To(BeNumerically(">", 0))
	})

	It("should hold further bursts until the read buffer drains", func() {
		c := config.Default()
		c.NumPorts = 4
		c.BufferDepth = 16
		c.BurstBeats = 8
		c.Cycles = 2000

		p := platform.MakeBuilder().WithConfig(c).Build("Platform")

		recorders := make([]*admitRecorder, c.NumPorts)
		for i, t := range p.ReadThrottles {
			recorders[i] = &admitRecorder{domain: p.Domain}
			t.AcceptHook(recorders[i])
		}

		firstPop := make([]uint64, c.NumPorts)
		popped := make([]bool, c.NumPorts)
		p.Domain.AcceptHook(hooking.HookFunc(func(ctx hooking.HookCtx) {
			if ctx.Pos != hardware.HookPosSettled {
				return
			}

			for i, f := range p.ReadFifos {
				if !popped[i] && f.Out.Fire() {
					popped[i] = true
					firstPop[i] = p.Domain.Cycle()
				}

				credit := p.ReadThrottles[i].Credit().Value()
				Expect(credit + f.Level()).To(BeNumerically("<=", 16))
			}
		}))

		p.EnqueueTraffic(4, 0)

		Expect(p.Run()).To(Succeed())
		Expect(p.Errors()).To(BeEmpty())

		for i, r := range recorders {
			Expect(r.cycles).To(HaveLen(4))
			Expect(r.blocks).To(BeNumerically(">", 0))
			Expect(r.cycles[2]).To(BeNumerically(">", firstPop[i]))
			Expect(r.cycles[3]).To(BeNumerically(">", r.cycles[2]))
			Expect(p.ReadInitiators[i].Results()).To(HaveLen(4))
		}
	})

	It("should answer an unmapped address with one DECODE_ERROR", func() {
		m := demux.NewAddressMap().MustAdd("Mem", 0x0, 0x10000)
		c := config.Default()
		c.NumPorts = 1
		c.Cycles = 500

		p := platform.MakeBuilder().
			WithConfig(c).
			WithAddressMap(m).
			Build("Platform")

		p.WriteInitiators[0].Enqueue(
			bustest.WriteBurst{Addr: axi.Addr{
				ID: 0x2a, Addr: 0xdead0000, Len: 7, Size: 3, Burst: axi.Incr}},
			bustest.WriteBurst{Addr: axi.Addr{
				ID: 0x2b, Addr: 0x40, Len: 7, Size: 3, Burst: axi.Incr}},
		)
		p.ReadInitiators[0].Enqueue(
			axi.Addr{ID: 0x3a, Addr: 0xdead0000, Len: 3, Size: 3, Burst: axi.Incr},
		)

		Expect(p.Run()).To(Succeed())
		Expect(p.Errors()).To(BeEmpty())

		writes := p.WriteInitiators[0].Results()
		Expect(writes).To(HaveLen(2))
		Expect(writes[0].ID).To(Equal(uint32(0x2a)))
		Expect(writes[0].Resp).To(Equal(axi.DecodeError))
		Expect(writes[1].Resp).To(Equal(axi.OK))

		reads := p.ReadInitiators[0].Results()
		Expect(reads).To(HaveLen(1))
		Expect(reads[0].Addr.ID).To(Equal(uint32(0x3a)))
		Expect(reads[0].Resp).To(Equal(axi.DecodeError))
		Expect(reads[0].Data).To(HaveLen(4))

		Expect(p.Memory.Read(0x40)).NotTo(BeZero())
	})
})
