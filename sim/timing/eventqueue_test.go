package timing

import (
	"math/rand"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("EventQueue", func() {
	var (
		mockCtrl *gomock.Controller
		queue    *EventQueue
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		queue = NewEventQueue()
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	event := func(t VTimeInSec, secondary bool) *MockEvent {
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(t).AnyTimes()
		evt.EXPECT().IsSecondary().Return(secondary).AnyTimes()

		return evt
	}

	It("should pop in time order", func() {
		r := rand.New(rand.NewSource(1))
		for i := 0; i < 100; i++ {
			queue.Push(TickEvent{At: VTimeInSec(r.Float64())})
		}

		Expect(queue.Len()).To(Equal(100))

		now := VTimeInSec(-1)
		for queue.Len() > 0 {
			evt := queue.Pop()
			Expect(evt.Time()).To(BeNumerically(">=", now))
			now = evt.Time()
		}
	})

	It("should keep push order for equal times", func() {
		evt1 := event(1, false)
		evt2 := event(1, false)
		evt3 := event(1, false)

		queue.Push(evt1)
		queue.Push(evt2)
		queue.Push(evt3)

		Expect(queue.Peek()).To(BeIdenticalTo(evt1))
		Expect(queue.Pop()).To(BeIdenticalTo(evt1))
		Expect(queue.Pop()).To(BeIdenticalTo(evt2))
		Expect(queue.Pop()).To(BeIdenticalTo(evt3))
	})

	It("should put secondary events after primary events of the same time",
		func() {
			secondary := event(1, true)
			primary := event(1, false)
			later := event(2, false)

			queue.Push(later)
			queue.Push(secondary)
			queue.Push(primary)

			Expect(queue.Pop()).To(BeIdenticalTo(primary))
			Expect(queue.Pop()).To(BeIdenticalTo(secondary))
			Expect(queue.Pop()).To(BeIdenticalTo(later))
		})
})
