package axi

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Response Combiner", func() {
	all := []Resp{OK, ExclusiveOK, TargetError, DecodeError}

	It("should let DECODE_ERROR dominate", func() {
		for _, r := range all {
			Expect(CombineResp(DecodeError, r)).To(Equal(DecodeError))
			Expect(CombineResp(r, DecodeError)).To(Equal(DecodeError))
		}
	})

	It("should rank OK above EXCLUSIVE_OK", func() {
		Expect(CombineResp(OK, ExclusiveOK)).To(Equal(OK))
		Expect(CombineResp(ExclusiveOK, OK)).To(Equal(OK))
		Expect(CombineResp(OK, OK)).To(Equal(OK))
		Expect(CombineResp(ExclusiveOK, ExclusiveOK)).To(Equal(ExclusiveOK))
	})

	It("should rank TARGET_ERROR above OK", func() {
		Expect(CombineResp(TargetError, OK)).To(Equal(TargetError))
		Expect(CombineResp(ExclusiveOK, TargetError)).To(Equal(TargetError))
	})

	It("should be commutative and associative", func() {
		for _, a := range all {
			for _, b := range all {
				Expect(CombineResp(a, b)).To(Equal(CombineResp(b, a)))

				for _, c := range all {
					Expect(CombineResp(CombineResp(a, b), c)).
						To(Equal(CombineResp(a, CombineResp(b, c))))
				}
			}
		}
	})

	It("should fold many responses", func() {
		Expect(CombineAll()).To(Equal(ExclusiveOK))
		Expect(CombineAll(ExclusiveOK, OK, ExclusiveOK)).To(Equal(OK))
		Expect(CombineAll(OK, TargetError, OK)).To(Equal(TargetError))
	})

	It("should print response names", func() {
		Expect(DecodeError.String()).To(Equal("DECODE_ERROR"))
		Expect(ExclusiveOK.String()).To(Equal("EXCLUSIVE_OK"))
		Expect(DecodeError.IsError()).To(BeTrue())
		Expect(OK.IsError()).To(BeFalse())
	})

	It("should panic on invalid codes", func() {
		Expect(func() { CombineResp(Resp(4), OK) }).To(Panic())
	})
})
