package session

import (
	"context"
	"errors"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/zombor/receipt-analyzer/internal/analysis"
	"github.com/zombor/receipt-analyzer/internal/upload"
)

// mockAnalyzer is a mock implementation of Analyzer
type mockAnalyzer struct {
	mu sync.Mutex

	result *analysis.Result
	err    error

	calls         int
	lastFilename  string
	lastData      []byte
	lastMediaType string

	// release, when set, blocks Analyze until closed
	release chan struct{}
}

func (m *mockAnalyzer) Analyze(ctx context.Context, filename string, data []byte, contentType string) (*analysis.Result, error) {
	m.mu.Lock()
	m.calls++
	m.lastFilename = filename
	m.lastData = data
	m.lastMediaType = contentType
	release := m.release
	m.mu.Unlock()

	if release != nil {
		<-release
	}
	if m.err != nil {
		return nil, m.err
	}
	return m.result, nil
}

func (m *mockAnalyzer) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

var _ = Describe("Service", func() {
	var (
		analyzer *mockAnalyzer
		store    *Store
		service  *Service
	)

	BeforeEach(func() {
		analyzer = &mockAnalyzer{
			result: &analysis.Result{Success: true},
		}
		store = NewStore()
		service = NewService(upload.NewGate(upload.DefaultConfig()), analyzer, store)
	})

	Describe("Submit", func() {
		When("the event holds one accepted file", func() {
			var snapshot Snapshot

			BeforeEach(func() {
				var err error
				snapshot, err = service.Submit(context.Background(), []upload.File{
					{Name: "receipt.jpg", Data: []byte("jpg-bytes")},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should analyze that file exactly once", func() {
				Expect(analyzer.callCount()).To(Equal(1))
				Expect(analyzer.lastFilename).To(Equal("receipt.jpg"))
				Expect(analyzer.lastData).To(Equal([]byte("jpg-bytes")))
			})

			It("should fill the content type from the extension", func() {
				Expect(analyzer.lastMediaType).To(Equal("image/jpeg"))
			})

			It("should end in the success state", func() {
				Expect(snapshot.Status).To(Equal("success"))
				Expect(snapshot.IsAnalyzing).To(BeFalse())
				Expect(snapshot.Result).To(Equal(analyzer.result))
			})
		})

		When("the event holds several accepted files", func() {
			BeforeEach(func() {
				_, err := service.Submit(context.Background(), []upload.File{
					{Name: "first.png", Data: []byte("first")},
					{Name: "second.png", Data: []byte("second")},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should forward only the first file", func() {
				Expect(analyzer.callCount()).To(Equal(1))
				Expect(analyzer.lastFilename).To(Equal("first.png"))
			})
		})

		When("every file is rejected by the type filter", func() {
			var snapshot Snapshot

			BeforeEach(func() {
				var err error
				snapshot, err = service.Submit(context.Background(), []upload.File{
					{Name: "notes.pdf", Data: []byte("pdf-bytes")},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should not call the analyzer", func() {
				Expect(analyzer.callCount()).To(BeZero())
			})

			It("should leave the session unchanged", func() {
				Expect(snapshot.Status).To(Equal("idle"))
				Expect(snapshot.Result).To(BeNil())
				Expect(snapshot.ErrorMessage).To(BeEmpty())
			})
		})

		When("the analysis fails with a service error", func() {
			var snapshot Snapshot

			BeforeEach(func() {
				analyzer.err = &analysis.ServiceError{StatusCode: 500, Message: "OCR failed"}
				var err error
				snapshot, err = service.Submit(context.Background(), []upload.File{
					{Name: "receipt.jpg", Data: []byte("jpg-bytes")},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should surface the service message", func() {
				Expect(snapshot.Status).To(Equal("error"))
				Expect(snapshot.ErrorMessage).To(Equal("OCR failed"))
			})

			It("should not be analyzing afterwards", func() {
				Expect(snapshot.IsAnalyzing).To(BeFalse())
			})
		})

		When("the analysis fails in transport", func() {
			var snapshot Snapshot

			BeforeEach(func() {
				analyzer.err = errors.New("dial tcp: connection refused")
				var err error
				snapshot, err = service.Submit(context.Background(), []upload.File{
					{Name: "receipt.jpg", Data: []byte("jpg-bytes")},
				})
				Expect(err).NotTo(HaveOccurred())
			})

			It("should substitute the default message", func() {
				Expect(snapshot.Status).To(Equal("error"))
				Expect(snapshot.ErrorMessage).To(Equal(analysis.DefaultErrorMessage))
			})
		})

		When("an upload arrives while a request is in flight", func() {
			var (
				release chan struct{}
				done    chan struct{}
			)

			BeforeEach(func() {
				release = make(chan struct{})
				done = make(chan struct{})
				analyzer.release = release

				go func() {
					defer GinkgoRecover()
					defer close(done)
					_, err := service.Submit(context.Background(), []upload.File{
						{Name: "first.jpg", Data: []byte("first")},
					})
					Expect(err).NotTo(HaveOccurred())
				}()

				Eventually(func() bool {
					return store.Snapshot().IsAnalyzing
				}).Should(BeTrue())
			})

			AfterEach(func() {
				if release != nil {
					close(release)
				}
				Eventually(done).Should(BeClosed())
			})

			It("should reject the second upload", func() {
				_, err := service.Submit(context.Background(), []upload.File{
					{Name: "second.jpg", Data: []byte("second")},
				})
				Expect(err).To(MatchError(ErrAnalysisInProgress))
			})

			It("should stay analyzing until the first request resolves", func() {
				Expect(store.Snapshot().IsAnalyzing).To(BeTrue())
				close(release)
				release = nil
				Eventually(done).Should(BeClosed())
				Expect(store.Snapshot().Status).To(Equal("success"))
			})
		})
	})
})
