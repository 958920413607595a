package article_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/zap"

	"github.com/papercomputeco/codequest/pkg/article"
	"github.com/papercomputeco/codequest/pkg/generator"
	"github.com/papercomputeco/codequest/pkg/generator/generatortest"
	"github.com/papercomputeco/codequest/pkg/llm"
	"github.com/papercomputeco/codequest/pkg/postprocess"
	"github.com/papercomputeco/codequest/pkg/prompt"
)

var _ = Describe("Service", func() {
	var (
		ctx     context.Context
		loader  *generatortest.Loader
		service *article.Service
		req     prompt.Request
	)

	BeforeEach(func() {
		ctx = context.Background()
		loader = &generatortest.Loader{
			Continuation: " Many people love technology. Many people love technology. And then",
		}
		handle := generator.NewHandle(loader, zap.NewNop())
		service = article.NewService(handle, llm.DefaultParameters(), zap.NewNop())
		req = prompt.Request{Topic: "gadgets", Audience: "Millennials", Tone: "casual"}
	})

	It("generates, strips the prompt and post-processes", func() {
		result, err := service.Generate(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		Expect(result.Content).To(Equal("Many peeps love tech."))
		Expect(result.Content).NotTo(ContainSubstring("Write a"))
		Expect(result.Audience).To(Equal(postprocess.AudienceMillennials))
		Expect(result.Prompt).To(Equal(prompt.Build(req)))
		Expect(result.ID).To(HaveLen(36))
		Expect(loader.Prompts()).To(ConsistOf(prompt.Build(req)))
	})

	It("loads the model lazily once across requests", func() {
		Expect(service.State()).To(Equal(generator.Unloaded))

		_, err := service.Generate(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		_, err = service.Generate(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		Expect(service.State()).To(Equal(generator.Loaded))
		Expect(loader.Loads()).To(Equal(1))
	})

	It("rejects incomplete requests without touching the model", func() {
		req.Tone = ""

		_, err := service.Generate(ctx, req)

		var missing prompt.MissingFieldError
		Expect(errors.As(err, &missing)).To(BeTrue())
		Expect(missing.Field).To(Equal("tone"))
		Expect(loader.Loads()).To(BeZero())
	})

	It("wraps model failures", func() {
		loader.GenerateErr = errors.New("cuda out of memory")

		_, err := service.Generate(ctx, req)
		Expect(err).To(MatchError(article.ErrGeneration))
		Expect(err.Error()).To(ContainSubstring("cuda out of memory"))
	})

	It("wraps load failures", func() {
		loader.LoadErr = errors.New("no such model")

		_, err := service.Generate(ctx, req)
		Expect(errors.Is(err, article.ErrGeneration)).To(BeTrue())
		Expect(service.State()).To(Equal(generator.Unloaded))
	})

	It("treats an empty sample list as a failure", func() {
		loader.NoSamples = true

		_, err := service.Generate(ctx, req)
		Expect(err).To(MatchError(article.ErrGeneration))
	})

	It("accepts output with no complete sentence", func() {
		loader.Continuation = " and so it"

		result, err := service.Generate(ctx, req)
		Expect(err).NotTo(HaveOccurred())
		Expect(result.Content).To(BeEmpty())
	})

	It("clears idempotently", func() {
		Expect(service.Clear(ctx)).To(Succeed())

		_, err := service.Generate(ctx, req)
		Expect(err).NotTo(HaveOccurred())

		Expect(service.Clear(ctx)).To(Succeed())
		Expect(service.Clear(ctx)).To(Succeed())
		Expect(service.State()).To(Equal(generator.Unloaded))
		Expect(loader.Unloads()).To(Equal(1))
	})
})
