package utils

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Clip", func() {
	It("counts runes, not bytes", func() {
		Expect(Clip("üüüü", 2)).To(Equal("üü"))
	})

	It("returns short strings unchanged", func() {
		Expect(Clip("abc", 10)).To(Equal("abc"))
		Expect(Clip("", 3)).To(Equal(""))
	})

	It("returns an empty string for a zero limit", func() {
		Expect(Clip("abc", 0)).To(Equal(""))
	})
})

var _ = Describe("Truncate", func() {
	It("returns the string unchanged when within the limit", func() {
		Expect(Truncate("short", 10)).To(Equal("short"))
	})

	It("returns the string unchanged when exactly at the limit", func() {
		Expect(Truncate("12345", 5)).To(Equal("12345"))
	})

	It("truncates with ellipsis when over the limit", func() {
		Expect(Truncate("this is a long string", 10)).To(Equal("this is a ..."))
	})

	It("never splits a multi-byte character", func() {
		Expect(Truncate("héllo wörld", 7)).To(Equal("héllo w..."))
	})
})

var _ = Describe("OneLine", func() {
	It("collapses whitespace runs", func() {
		Expect(OneLine("  {\n  \"error\":\t\"bad\"\n}\n")).To(Equal(`{ "error": "bad" }`))
	})
})
