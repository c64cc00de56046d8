package demux

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("AddressMap", func() {
	var m *AddressMap

	BeforeEach(func() {
		m = NewAddressMap().
			MustAdd("Low", 0x0, 0x1000).
			MustAdd("High", 0x8000, 0x1000)
	})

	It("should decode addresses to regions", func() {
		target, ok := m.Decode(0xfff)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(0))

		target, ok = m.Decode(0x8000)
		Expect(ok).To(BeTrue())
		Expect(target).To(Equal(1))
	})

	It("should not decode holes", func() {
		_, ok := m.Decode(0x1000)
		Expect(ok).To(BeFalse())

		_, ok = m.Decode(0x9000)
		Expect(ok).To(BeFalse())
	})

	It("should reject overlapping regions", func() {
		err := m.Add("Mid", 0x800, 0x1000)
		Expect(err).To(MatchError(ContainSubstring("overlaps Low")))
		Expect(m.Len()).To(Equal(2))
	})

	It("should reject empty regions", func() {
		Expect(m.Add("Empty", 0x4000, 0)).NotTo(Succeed())
	})

	It("should reject regions that wrap around", func() {
		Expect(m.Add("Top", ^uint64(0)-0xf, 0x20)).NotTo(Succeed())
	})

	It("should sort regions by base", func() {
		m.MustAdd("Mid", 0x4000, 0x100)

		sorted := m.Sorted()
		Expect(sorted[0].Name).To(Equal("Low"))
		Expect(sorted[1].Name).To(Equal("Mid"))
		Expect(sorted[2].Name).To(Equal("High"))
		Expect(m.Region(2).Name).To(Equal("Mid"))
	})
})
