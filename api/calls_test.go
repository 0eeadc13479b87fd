package api

import (
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("calls", func() {
	var (
		c   *calls
		now time.Time
	)

	BeforeEach(func() {
		now = time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
		c = newCalls()
		c.now = func() time.Time { return now }
	})

	It("hands out each call once", func() {
		id := c.add(pendingCall{fn: "chat", message: "hi"})

		call, ok := c.take("chat", id)
		Expect(ok).To(BeTrue())
		Expect(call.message).To(Equal("hi"))

		_, ok = c.take("chat", id)
		Expect(ok).To(BeFalse())
	})

	It("scopes event ids to their function", func() {
		id := c.add(pendingCall{fn: "chat"})
		_, ok := c.take("predict", id)
		Expect(ok).To(BeFalse())
		Expect(c.len()).To(Equal(1))
	})

	It("expires calls that are never streamed", func() {
		stale := c.add(pendingCall{fn: "chat"})
		now = now.Add(callTTL + time.Second)

		_, ok := c.take("chat", stale)
		Expect(ok).To(BeFalse())

		c.add(pendingCall{fn: "chat"})
		Expect(c.len()).To(Equal(1))
	})
})
