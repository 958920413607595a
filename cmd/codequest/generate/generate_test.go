package generatecmder

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"

	tea "github.com/charmbracelet/bubbletea"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/codequest/cmd/codequest/cliconfig"
	"github.com/papercomputeco/codequest/pkg/article"
	"github.com/papercomputeco/codequest/pkg/llm"
)

// runtimeStub answers every generate call with reply and records keep_alive
// values.
type runtimeStub struct {
	mu         sync.Mutex
	reply      string
	keepAlives []string
}

func (r *runtimeStub) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	var body llm.GenerateRequest
	_ = json.NewDecoder(req.Body).Decode(&body)

	r.mu.Lock()
	r.keepAlives = append(r.keepAlives, body.KeepAlive)
	response := r.reply
	r.mu.Unlock()

	if body.Prompt == "" {
		response = ""
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(llm.GenerateResponse{Model: body.Model, Response: response, Done: true})
}

func (r *runtimeStub) setReply(reply string) {
	r.mu.Lock()
	r.reply = reply
	r.mu.Unlock()
}

func (r *runtimeStub) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.keepAlives...)
}

var _ = Describe("Generate Command", func() {
	var (
		stub   *runtimeStub
		server *httptest.Server
	)

	BeforeEach(func() {
		GinkgoT().Setenv("HOME", GinkgoT().TempDir())
		GinkgoT().Setenv(cliconfig.EnvConfigPath, "")

		stub = &runtimeStub{reply: " Many people love technology. Many people love technology. And then"}
		server = httptest.NewServer(stub)
	})

	AfterEach(func() {
		server.Close()
	})

	execute := func(args ...string) (string, error) {
		var out bytes.Buffer
		cmd := NewGenerateCmd()
		cmd.SetOut(&out)
		cmd.SetErr(&out)
		cmd.SilenceUsage = true
		cmd.SilenceErrors = true
		cmd.SetArgs(append([]string{"--upstream", server.URL}, args...))
		err := cmd.ExecuteContext(context.Background())
		return out.String(), err
	}

	It("prints the cleaned article as plain text when output is not a terminal", func() {
		out, err := execute("--topic", "gadgets", "--audience", "millennials", "--tone", "fun")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Many peeps love tech.\n"))
	})

	It("reports an empty result", func() {
		stub.setReply(" and then")
		out, err := execute("--topic", "gadgets", "--audience", "students", "--tone", "fun")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(ContainSubstring("did not produce a complete sentence"))
	})

	It("wraps long output at the requested width", func() {
		stub.setReply(" One two three four five six seven eight nine ten.")
		out, err := execute("--topic", "t", "--audience", "a", "--tone", "x", "--width", "20")
		Expect(err).NotTo(HaveOccurred())
		for _, line := range bytes.Split(bytes.TrimSpace([]byte(out)), []byte("\n")) {
			Expect(len(line)).To(BeNumerically("<=", 20))
		}
	})

	It("requires every request field before contacting the model", func() {
		_, err := execute("--topic", "gadgets", "--tone", "fun")
		Expect(err).To(MatchError("missing required field: audience"))
		Expect(stub.recorded()).To(BeEmpty())
	})

	It("unloads the model when asked", func() {
		_, err := execute("--topic", "t", "--audience", "a", "--tone", "x", "--unload")
		Expect(err).NotTo(HaveOccurred())
		Expect(stub.recorded()).To(ContainElement("0"))
	})
})

var _ = Describe("spinnerModel", func() {
	It("quits with the result once generation is done", func() {
		m := newSpinnerModel("working", nil)
		result := &article.Result{Content: "Done."}

		next, cmd := m.Update(doneMsg{result: result})
		Expect(cmd).NotTo(BeNil())
		Expect(cmd()).To(Equal(tea.Quit()))

		final := next.(spinnerModel)
		Expect(final.result).To(BeIdenticalTo(result))
		Expect(final.View()).To(BeEmpty())
	})

	It("records generation errors", func() {
		m := newSpinnerModel("working", nil)
		next, _ := m.Update(doneMsg{err: errors.New("boom")})
		Expect(next.(spinnerModel).err).To(MatchError("boom"))
	})

	It("is interrupted by ctrl+c", func() {
		m := newSpinnerModel("working", nil)
		next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
		Expect(cmd).NotTo(BeNil())
		Expect(next.(spinnerModel).err).To(MatchError(errInterrupted))
	})

	It("shows the label while running", func() {
		m := newSpinnerModel("Writing about AI...", nil)
		Expect(m.View()).To(ContainSubstring("Writing about AI..."))
	})
})
