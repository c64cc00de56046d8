package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Freq", func() {
	It("should get period", func() {
		f := 1 * GHz
		Expect(f.Period()).To(BeNumerically("==", 1e-9))
	})

	It("should convert time to cycles", func() {
		f := 500 * MHz
		Expect(f.Cycle(20e-9)).To(Equal(uint64(10)))
	})

	It("should get this tick", func() {
		f := 1 * Hz
		Expect(f.ThisTick(1)).To(BeNumerically("~", 1, 1e-12))
		Expect(f.ThisTick(1.3)).To(BeNumerically("~", 2, 1e-12))
	})

	It("should get the next tick", func() {
		f := 1 * GHz
		Expect(f.NextTick(0.000000031)).
			To(BeNumerically("~", 0.000000032, 1e-12))
		Expect(f.NextTick(0.0000000311)).
			To(BeNumerically("~", 0.000000032, 1e-12))
	})

	It("should get the n cycles later", func() {
		f := 1 * GHz
		Expect(f.NCyclesLater(12, 0.000000001)).
			To(BeNumerically("~", 0.000000013, 1e-12))
	})

	It("should panic on zero frequency", func() {
		f := Freq(0)
		Expect(func() { f.Period() }).To(Panic())
	})
})
