package hooking

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"
)

var _ = Describe("HookableBase", func() {
	var (
		mockCtrl *gomock.Controller
		base     *HookableBase
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		base = &HookableBase{}
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should invoke hooks in order", func() {
		pos := &HookPos{Name: "Test"}
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)

		ctx := HookCtx{Pos: pos, Item: 42}
		first := hook1.EXPECT().Func(ctx)
		hook2.EXPECT().Func(ctx).After(first)

		base.AcceptHook(hook1)
		base.AcceptHook(hook2)
		base.InvokeHook(ctx)

		Expect(base.NumHooks()).To(Equal(2))
	})

	It("should remove hooks", func() {
		pos := &HookPos{Name: "Test"}
		hook1 := NewMockHook(mockCtrl)
		hook2 := NewMockHook(mockCtrl)
		hook2.EXPECT().Func(HookCtx{Pos: pos})

		base.AcceptHook(hook1)
		base.AcceptHook(hook2)

		Expect(base.RemoveHook(hook1)).To(BeTrue())
		Expect(base.RemoveHook(hook1)).To(BeFalse())
		Expect(base.NumHooks()).To(Equal(1))

		base.InvokeHook(HookCtx{Pos: pos})
	})

	It("should panic on duplicated hook", func() {
		hook := NewMockHook(mockCtrl)
		base.AcceptHook(hook)

		Expect(func() { base.AcceptHook(hook) }).To(Panic())
	})

	It("should accept function hooks", func() {
		count := 0
		base.AcceptHook(HookFunc(func(HookCtx) { count++ }))
		base.AcceptHook(HookFunc(func(HookCtx) { count += 10 }))

		base.InvokeHook(HookCtx{})

		Expect(count).To(Equal(11))
	})
})
