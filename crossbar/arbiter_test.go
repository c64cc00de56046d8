package crossbar

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Arbiter", func() {
	It("should grant the lowest index under fixed priority", func() {
		a := NewArbiter(FixedPriority, 4)

		winner, found := a.Arbitrate([]bool{false, true, true, true})
		Expect(found).To(BeTrue())
		Expect(winner).To(Equal(1))

		a.Advance()
		winner, _ = a.Arbitrate([]bool{false, true, true, true})
		Expect(winner).To(Equal(1))
	})

	It("should report no winner", func() {
		a := NewArbiter(RoundRobin, 3)

		_, found := a.Arbitrate([]bool{false, false, false})
		Expect(found).To(BeFalse())
	})

	It("should advance the pointer on every scan", func() {
		a := NewArbiter(RoundRobin, 4)
		reqs := []bool{true, false, false, true}

		winner, _ := a.Arbitrate(reqs)
		Expect(winner).To(Equal(0))

		a.Advance()
		Expect(a.Pointer()).To(Equal(1))
		winner, _ = a.Arbitrate(reqs)
		Expect(winner).To(Equal(3))

		a.Advance()
		a.Advance()
		a.Advance()
		Expect(a.Pointer()).To(Equal(0))
	})

	It("should not change state in Arbitrate", func() {
		a := NewArbiter(RoundRobin, 4)
		a.Arbitrate([]bool{true, true, true, true})
		a.Arbitrate([]bool{true, true, true, true})

		Expect(a.Pointer()).To(Equal(0))
	})

	It("should never let a higher index beat a lower one under fixed priority",
		func() {
			a := NewArbiter(FixedPriority, 5)
			rng := rand.New(rand.NewSource(1))

			for n := 0; n < 1000; n++ {
				reqs := make([]bool, 5)
				for i := range reqs {
					reqs[i] = rng.Intn(2) == 0
				}

				winner, found := a.Arbitrate(reqs)
				a.Advance()

				if !found {
					continue
				}

				for i := 0; i < winner; i++ {
					Expect(reqs[i]).To(BeFalse())
				}
			}
		})

	It("should grant a constant requester within N scans", func() {
		const n = 5
		a := NewArbiter(RoundRobin, n)
		rng := rand.New(rand.NewSource(2))
		sinceGrant := 0

		for round := 0; round < 1000; round++ {
			reqs := make([]bool, n)
			for i := range reqs {
				reqs[i] = rng.Intn(3) > 0
			}
			reqs[2] = true

			winner, _ := a.Arbitrate(reqs)
			a.Advance()

			sinceGrant++
			if winner == 2 {
				sinceGrant = 0
			}

			Expect(sinceGrant).To(BeNumerically("<", n))
		}
	})

	It("should parse policies", func() {
		p, err := ParsePolicy("round-robin")
		Expect(err).NotTo(HaveOccurred())
		Expect(p).To(Equal(RoundRobin))

		_, err = ParsePolicy("lottery")
		Expect(err).To(HaveOccurred())
	})
})
