package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/time/rate"

	"github.com/ryosukesatoh/pubmed-digest/internal/config"
	"github.com/ryosukesatoh/pubmed-digest/internal/digest"
	"github.com/ryosukesatoh/pubmed-digest/internal/pubmed"
	"github.com/ryosukesatoh/pubmed-digest/internal/state"
	"github.com/ryosukesatoh/pubmed-digest/internal/summarizer"
)

// Source discovers new article identifiers and fetches their records.
type Source interface {
	Search(ctx context.Context) ([]string, error)
	Fetch(ctx context.Context, pmids []string) ([]byte, error)
}

// Sender delivers one composed digest.
type Sender interface {
	Send(ctx context.Context, subject, body string) error
}

// Runner orchestrates one digest run:
// search -> dedup -> fetch/parse -> mark delivered -> summarize -> send.
type Runner struct {
	topic         string
	pubTypeLang   string
	statePath     string
	retentionDays int
	source        Source
	summarizer    summarizer.Summarizer
	sender        Sender
	limiter       *rate.Limiter
	now           func() time.Time
}

func New(cfg *config.Config, src Source, sum summarizer.Summarizer, snd Sender) *Runner {
	return &Runner{
		topic:         cfg.Topic,
		pubTypeLang:   cfg.PubTypeLang,
		statePath:     cfg.State.Path,
		retentionDays: cfg.State.RetentionDays,
		source:        src,
		summarizer:    sum,
		sender:        snd,
		limiter:       rate.NewLimiter(rate.Every(cfg.Summarizer.CallInterval.Std()), 1),
		now:           time.Now,
	}
}

// Run executes the full pipeline once. Exactly one digest is sent per
// successful run, even when no new articles were found.
func (r *Runner) Run(ctx context.Context) error {
	now := r.now()

	st := state.Load(r.statePath)
	if removed := st.Prune(now, r.retentionDays); removed > 0 {
		log.Printf("Pruned %d delivered PMIDs older than %d days", removed, r.retentionDays)
	}

	log.Println("Searching PubMed...")
	pmids, err := r.source.Search(ctx)
	if err != nil {
		return fmt.Errorf("runner: search failed: %w", err)
	}

	var newIDs []string
	for _, id := range pmids {
		if !st.Contains(id) {
			newIDs = append(newIDs, id)
		}
	}
	log.Printf("Found %d candidates, %d new", len(pmids), len(newIDs))

	var articles []pubmed.Article
	if len(newIDs) > 0 {
		doc, err := r.source.Fetch(ctx, newIDs)
		if err != nil {
			return fmt.Errorf("runner: fetch failed: %w", err)
		}
		articles, err = pubmed.Parse(doc)
		if err != nil {
			return fmt.Errorf("runner: parse failed: %w", err)
		}

		// Delivery is recorded at fetch time: a summarization failure
		// degrades the digest content but can never cause a duplicate send.
		for _, a := range articles {
			st.Mark(a.PMID, now)
		}
	}

	if err := state.Save(r.statePath, st); err != nil {
		return fmt.Errorf("runner: %w", err)
	}

	for i := range articles {
		r.enrich(ctx, &articles[i])
	}

	subject := digest.Subject(r.topic, now, state.JST)
	body := digest.Body(r.topic, articles)

	log.Printf("Sending digest with %d articles", len(articles))
	if err := r.sender.Send(ctx, subject, body); err != nil {
		return fmt.Errorf("runner: send failed: %w", err)
	}
	log.Println("Digest sent")
	return nil
}

// enrich fills in the translated title and summary bullets for one article.
// Every failure path ends in placeholder content; nothing here aborts the
// run.
func (r *Runner) enrich(ctx context.Context, a *pubmed.Article) {
	a.PubTypes = pubmed.TranslatePubTypes(a.PubTypes, r.pubTypeLang)

	if a.Abstract == "" {
		a.Bullets = []string{summarizer.NoAbstractBullet}
		titleJA := r.translateTitle(ctx, a.Title)
		if titleJA == "" {
			titleJA = summarizer.TitleFallback
		}
		a.TitleJA = titleJA
		return
	}

	if err := r.limiter.Wait(ctx); err != nil {
		log.Printf("WARNING: rate limiter interrupted: %v", err)
	}
	sum, err := r.summarizer.Summarize(ctx, a.Title, a.Abstract)
	if err != nil {
		log.Printf("WARNING: summarization failed for PMID %s: %v", a.PMID, err)
		a.TitleJA = summarizer.TitleFallback
		a.Bullets = summarizer.FormatBullets(nil)
		return
	}
	a.TitleJA = sum.TitleJA
	a.Bullets = sum.Bullets
}

func (r *Runner) translateTitle(ctx context.Context, title string) string {
	if err := r.limiter.Wait(ctx); err != nil {
		log.Printf("WARNING: rate limiter interrupted: %v", err)
	}
	titleJA, err := r.summarizer.TranslateTitle(ctx, title)
	if err != nil {
		log.Printf("WARNING: title translation failed: %v", err)
		return ""
	}
	return titleJA
}
