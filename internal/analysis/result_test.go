package analysis

import (
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("ParseResult", func() {
	var (
		body   []byte
		result *Result
		err    error
	)

	JustBeforeEach(func() {
		result, err = ParseResult(body)
	})

	When("the body is a success response", func() {
		BeforeEach(func() {
			body = []byte(`{"success":true,"data":[{"merchant_name":"Acme","total":"10.00"}]}`)
		})

		It("should not return an error", func() {
			Expect(err).NotTo(HaveOccurred())
		})

		It("should mark the result successful", func() {
			Expect(result.Success).To(BeTrue())
		})

		It("should decode the records", func() {
			Expect(result.Records).To(HaveLen(1))
			Expect(result.Records[0].MerchantName).To(HaveValue(Equal("Acme")))
			Expect(result.Records[0].Total).To(HaveValue(Equal("10.00")))
		})

		It("should leave absent fields nil", func() {
			Expect(result.Records[0].MerchantConfidence).To(BeNil())
			Expect(result.Records[0].MerchantAddress).To(BeNil())
			Expect(result.Records[0].Items).To(BeEmpty())
		})

		It("should retain the verbatim body", func() {
			Expect(result.Raw()).To(Equal(body))
		})
	})

	When("the body carries fields beyond the known schema", func() {
		BeforeEach(func() {
			body = []byte(`{"success":true,"data":[],"raw_result":{"model_id":"prebuilt-receipt"}}`)
		})

		It("should still parse", func() {
			Expect(err).NotTo(HaveOccurred())
			Expect(result.Success).To(BeTrue())
		})

		It("should keep the unknown fields in the raw body", func() {
			Expect(string(result.Raw())).To(ContainSubstring("raw_result"))
		})
	})

	When("the body is not JSON", func() {
		BeforeEach(func() {
			body = []byte("internal server error")
		})

		It("should return an error", func() {
			Expect(err).To(HaveOccurred())
		})
	})
})

var _ = Describe("ErrorMessage", func() {
	When("the error is a ServiceError with a message", func() {
		It("should return the service message", func() {
			err := &ServiceError{StatusCode: 500, Message: "OCR failed"}
			Expect(ErrorMessage(err)).To(Equal("OCR failed"))
		})
	})

	When("the error is a ServiceError without a message", func() {
		It("should return the default message", func() {
			err := &ServiceError{StatusCode: 500}
			Expect(ErrorMessage(err)).To(Equal(DefaultErrorMessage))
		})
	})

	When("the error is a transport failure", func() {
		It("should return the default message", func() {
			Expect(ErrorMessage(errors.New("dial tcp: connection refused"))).To(Equal(DefaultErrorMessage))
		})
	})
})
