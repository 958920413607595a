package ollama_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/llm"
	"github.com/papercomputeco/codequest/pkg/ollama"
)

// fakeRuntime records generate requests and answers with a canned reply.
type fakeRuntime struct {
	mu       sync.Mutex
	requests []llm.GenerateRequest
	status   int
	reply    string
}

func (f *fakeRuntime) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	defer GinkgoRecover()
	Expect(r.URL.Path).To(Equal("/api/generate"))
	Expect(r.Method).To(Equal(http.MethodPost))

	var req llm.GenerateRequest
	Expect(json.NewDecoder(r.Body).Decode(&req)).To(Succeed())

	f.mu.Lock()
	f.requests = append(f.requests, req)
	status := f.status
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	if status != 0 && status != http.StatusOK {
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(llm.ErrorResponse{Error: "model \"" + req.Model + "\" not found"})
		return
	}
	_ = json.NewEncoder(w).Encode(llm.GenerateResponse{
		Model:      req.Model,
		CreatedAt:  time.Now(),
		Response:   f.reply,
		Done:       true,
		DoneReason: "stop",
	})
}

func (f *fakeRuntime) recorded() []llm.GenerateRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]llm.GenerateRequest(nil), f.requests...)
}

var _ = Describe("Client", func() {
	var (
		ctx     context.Context
		runtime *fakeRuntime
		server  *httptest.Server
		client  *ollama.Client
	)

	BeforeEach(func() {
		ctx = context.Background()
		runtime = &fakeRuntime{reply: " It was a sunny day."}
		server = httptest.NewServer(runtime)
		client = ollama.New(ollama.Config{
			URL:   server.URL + "/",
			Model: "test-model",
		}, zap.NewNop())
	})

	AfterEach(func() {
		server.Close()
	})

	It("loads the model with an empty prompt", func() {
		_, err := client.Load(ctx)
		Expect(err).NotTo(HaveOccurred())

		reqs := runtime.recorded()
		Expect(reqs).To(HaveLen(1))
		Expect(reqs[0].Model).To(Equal("test-model"))
		Expect(reqs[0].Prompt).To(BeEmpty())
		Expect(reqs[0].KeepAlive).To(Equal("5m0s"))
		Expect(*reqs[0].Stream).To(BeFalse())
	})

	It("returns the prompt followed by the continuation", func() {
		model, err := client.Load(ctx)
		Expect(err).NotTo(HaveOccurred())

		gens, err := model.Generate(ctx, "Write a story.", llm.DefaultParameters())
		Expect(err).NotTo(HaveOccurred())
		Expect(gens).To(HaveLen(1))
		Expect(gens[0].Text).To(Equal("Write a story. It was a sunny day."))

		req := runtime.recorded()[1]
		Expect(req.Prompt).To(Equal("Write a story."))
		Expect(*req.Options.NumPredict).To(Equal(800))
		Expect(*req.Options.TopK).To(Equal(40))
		Expect(*req.Options.Temperature).To(Equal(0.7))
	})

	It("requests one completion per sample", func() {
		model, err := client.Load(ctx)
		Expect(err).NotTo(HaveOccurred())

		params := llm.DefaultParameters()
		params.SampleCount = 3
		gens, err := model.Generate(ctx, "p", params)
		Expect(err).NotTo(HaveOccurred())
		Expect(gens).To(HaveLen(3))
		Expect(runtime.recorded()).To(HaveLen(4))
	})

	It("refuses to generate with truncation disabled", func() {
		model, err := client.Load(ctx)
		Expect(err).NotTo(HaveOccurred())

		params := llm.DefaultParameters()
		params.Truncation = false
		_, err = model.Generate(ctx, "p", params)
		Expect(err).To(MatchError(ollama.ErrTruncationRequired))
	})

	It("unloads with a zero keep-alive", func() {
		model, err := client.Load(ctx)
		Expect(err).NotTo(HaveOccurred())

		Expect(model.Unload(ctx)).To(Succeed())

		reqs := runtime.recorded()
		Expect(reqs).To(HaveLen(2))
		Expect(reqs[1].KeepAlive).To(Equal("0"))
		Expect(reqs[1].Prompt).To(BeEmpty())
	})

	It("surfaces runtime errors with status and message", func() {
		runtime.status = http.StatusNotFound

		_, err := client.Load(ctx)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("404"))
		Expect(err.Error()).To(ContainSubstring(`model "test-model" not found`))
	})

	It("uses a configured keep-alive", func() {
		client = ollama.New(ollama.Config{
			URL:       server.URL,
			Model:     "test-model",
			KeepAlive: 30 * time.Second,
		}, zap.NewNop())

		_, err := client.Load(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(runtime.recorded()[0].KeepAlive).To(Equal("30s"))
	})

	It("stops when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := client.Load(cancelled)
		Expect(err).To(MatchError(ContainSubstring("context canceled")))
	})
})
