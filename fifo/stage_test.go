package fifo

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/axiconnect/sim/hardware"
)

var _ = Describe("Stage", func() {
	var domain *hardware.Domain

	BeforeEach(func() {
		domain = hardware.MakeDomainBuilder().Build("Domain")
	})

	It("should deliver beats in order", func() {
		s := MakeBuilder[int]().WithDomain(domain).WithDepth(4).Build("Fifo")

		for i := 1; i <= 3; i++ {
			s.In.Drive(i)
			domain.Step()
		}
		s.In.Idle()

		Expect(s.Level()).To(Equal(3))

		s.Out.Ready.Set(true)

		var got []int
		for i := 0; i < 3; i++ {
			domain.Step()
			got = append(got, s.Out.Payload.Get())
		}

		Expect(s.Level()).To(Equal(0))
		Expect(got).To(Equal([]int{1, 2, 3}))
	})

	It("should stop accepting when full", func() {
		s := MakeBuilder[int]().WithDomain(domain).WithDepth(2).Build("Fifo")

		s.In.Drive(7)
		domain.Step()
		domain.Step()
		domain.Step()

		Expect(s.Level()).To(Equal(2))
		Expect(s.In.Ready.Get()).To(BeFalse())
	})

	It("should report the level one cycle late", func() {
		s := MakeBuilder[int]().
			WithDomain(domain).
			WithDepth(4).
			WithLevelLatency(1).
			Build("Fifo")

		s.In.Drive(1)
		domain.Step()
		Expect(s.Buffer().Size()).To(Equal(1))
		Expect(s.Level()).To(Equal(0))

		s.In.Idle()
		domain.Step()
		Expect(s.Level()).To(Equal(1))
	})

	It("should pass through at depth zero", func() {
		s := MakeBuilder[int]().WithDomain(domain).WithDepth(0).Build("Fifo")

		s.In.Drive(5)
		s.Out.Ready.Set(true)
		domain.Step()

		Expect(s.Out.Valid.Get()).To(BeTrue())
		Expect(s.Out.Payload.Get()).To(Equal(5))
		Expect(s.In.Ready.Get()).To(BeTrue())
		Expect(s.Level()).To(Equal(0))
	})

	It("should reject invalid level latency", func() {
		Expect(func() {
			MakeBuilder[int]().WithDomain(domain).WithLevelLatency(2).Build("Fifo")
		}).To(Panic())
	})
})
