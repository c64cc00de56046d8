package timing

import (
	"bytes"
	"log"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/sarchlab/axiconnect/sim/hooking"
)

var _ = Describe("EventLogger", func() {
	var (
		mockCtrl *gomock.Controller
		buf      *bytes.Buffer
		logger   *EventLogger
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		buf = new(bytes.Buffer)
		logger = NewEventLogger(log.New(buf, "", 0))
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should print events before they are handled", func() {
		handler := NewMockHandler(mockCtrl)
		evt := NewMockEvent(mockCtrl)
		evt.EXPECT().Time().Return(VTimeInSec(2e-9)).AnyTimes()
		evt.EXPECT().Handler().Return(handler).AnyTimes()

		logger.Func(hooking.HookCtx{Pos: HookPosBeforeEvent, Item: evt})

		Expect(buf.String()).To(ContainSubstring("2.000ns"))
		Expect(buf.String()).To(ContainSubstring("MockHandler"))
	})

	It("should ignore other positions", func() {
		logger.Func(hooking.HookCtx{Pos: HookPosAfterEvent})

		Expect(buf.String()).To(BeEmpty())
	})
})
