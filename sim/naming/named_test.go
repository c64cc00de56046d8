package naming

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Name", func() {
	It("should parse indexed tokens", func() {
		tokens, err := ParseName("Xbar.Input[3][1].AR")

		Expect(err).NotTo(HaveOccurred())
		Expect(tokens).To(HaveLen(3))
		Expect(tokens[1].Elem).To(Equal("Input"))
		Expect(tokens[1].Index).To(Equal([]int{3, 1}))
	})

	It("should accept valid names", func() {
		Expect(func() { NameMustBeValid("Xbar.Input[0].AR") }).NotTo(Panic())
		Expect(func() { NameMustBeValid("WriteThrottle") }).NotTo(Panic())
	})

	It("should reject invalid names", func() {
		Expect(func() { NameMustBeValid("Xbar..AR") }).To(Panic())
		Expect(func() { NameMustBeValid("xbar") }).To(Panic())
		Expect(func() { NameMustBeValid("Xbar_0") }).To(Panic())
		Expect(func() { NameMustBeValid("Xbar.Input[0") }).To(Panic())
		Expect(func() { NameMustBeValid("Xbar.Input[A]") }).To(Panic())
		Expect(func() { NameMustBeValid("Xbar.Input[0]x") }).To(Panic())
		Expect(func() { NameMustBeValid("Xbar.") }).To(Panic())
	})

	It("should build names", func() {
		Expect(BuildName("", "Xbar")).To(Equal("Xbar"))
		Expect(BuildName("Top", "Xbar")).To(Equal("Top.Xbar"))
		Expect(BuildNameWithIndex("Xbar", "Input", 2)).
			To(Equal("Xbar.Input[2]"))
	})
})
