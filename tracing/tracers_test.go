package tracing

import (
	"bytes"
	"database/sql"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/axiconnect/axi"
	"github.com/sarchlab/axiconnect/crossbar"
	"github.com/sarchlab/axiconnect/datarecording"
	"github.com/sarchlab/axiconnect/internal/bustest"
	"github.com/sarchlab/axiconnect/sim/hardware"
)

var _ = Describe("Tracers", func() {
	var (
		domain     *hardware.Domain
		initiators []*bustest.ReadInitiator
	)

	BeforeEach(func() {
		domain = hardware.MakeDomainBuilder().Build("Domain")
		xbar := crossbar.MakeReadBuilder().
			WithDomain(domain).
			WithNumInputs(2).
			Build("Xbar")

		bustest.NewReadTarget(domain, "Target", xbar.Out,
			bustest.NewMemory(), 1, 1)

		initiators = nil
		for i, in := range xbar.Inputs {
			initiator := bustest.NewReadInitiator(domain,
				[]string{"InitiatorA", "InitiatorB"}[i], in, int64(i), 1)
			initiator.Enqueue(
				axi.Addr{ID: uint32(i), Addr: 0x100, Len: 3, Burst: axi.Incr},
				axi.Addr{ID: uint32(i), Addr: 0x200, Len: 1, Burst: axi.Incr},
			)
			initiators = append(initiators, initiator)
		}
	})

	run := func() {
		done := func() bool {
			return initiators[0].Done() && initiators[1].Done()
		}

		Expect(domain.RunUntil(done, 200)).To(Succeed())
	}

	It("should count locks per port", func() {
		stats := NewStatsTracer(KindIs(KindLock))
		busy := NewBusyTimeTracer(nil)
		CollectTrace(domain, stats)
		CollectTrace(domain, busy)

		run()

		list := stats.Stats()
		Expect(list).To(HaveLen(2))
		Expect(list[0].What).To(Equal("Port[0]"))
		Expect(list[0].Count).To(Equal(2))
		Expect(list[1].What).To(Equal("Port[1]"))
		Expect(list[1].Count).To(Equal(2))
		Expect(list[0].AverageCycles()).To(BeNumerically(">", 1))

		total := list[0].TotalCycles + list[1].TotalCycles
		Expect(busy.BusyCycles("Xbar", domain.Cycle())).To(Equal(total))
	})

	It("should log grants and releases", func() {
		buf := new(bytes.Buffer)
		CollectTrace(domain, NewLogTracer(log.New(buf, "", 0), nil))

		run()

		Expect(buf.String()).To(ContainSubstring("Xbar, start lock, Port[0]"))
		Expect(buf.String()).To(ContainSubstring("Xbar, end lock, Port[1]"))
	})

	It("should write finished tasks into the database", func() {
		db, err := sql.Open("sqlite3", ":memory:")
		Expect(err).NotTo(HaveOccurred())
		db.SetMaxOpenConns(1)

		recorder := datarecording.NewWithDB(db)
		defer recorder.Close()

		tracer, err := NewDBTracer(recorder, nil)
		Expect(err).NotTo(HaveOccurred())
		CollectTrace(domain, tracer)

		run()

		Expect(recorder.Flush()).To(Succeed())
		Expect(recorder.Count(TaskTable)).To(Equal(4))
	})
})

var _ = Describe("BusyTimeTracer", func() {
	It("should count overlapping tasks once", func() {
		t := NewBusyTimeTracer(nil)

		t.StartTask(Task{ID: "1", Where: "A", StartCycle: 2})
		t.StartTask(Task{ID: "2", Where: "A", StartCycle: 4})
		t.EndTask(Task{ID: "1", Where: "A", StartCycle: 2, EndCycle: 6})
		Expect(t.BusyCycles("A", 7)).To(Equal(uint64(5)))

		t.EndTask(Task{ID: "2", Where: "A", StartCycle: 4, EndCycle: 8})
		Expect(t.BusyCycles("A", 20)).To(Equal(uint64(6)))
		Expect(t.BusyCycles("B", 20)).To(BeZero())
	})
})
