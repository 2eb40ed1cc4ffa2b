package client

import (
	"context"
	"errors"

	"github.com/tbourn/go-vocab-backend/internal/domain"
	"github.com/tbourn/go-vocab-backend/internal/services"
)

var (
	// ErrEmptyDeck is returned when an action needs a current card.
	ErrEmptyDeck = errors.New("deck is empty")
	// ErrNothingSelected is returned by set actions with no selection.
	ErrNothingSelected = errors.New("no cards selected")
)

// DeckAPI is the part of Client a Deck needs.
type DeckAPI interface {
	List(ctx context.Context, opts ListOptions) ([]domain.Vocabulary, error)
	Review(ctx context.Context, id, step string) (*domain.Vocabulary, error)
	BatchReview(ctx context.Context, ids []string, step string) (*services.BatchResult, error)
	Delete(ctx context.Context, ids []string) (int64, error)
}

// Deck is the review session state: the fetched cards, the current card,
// which side is showing and the selection used by set actions.
//
// A Deck is not safe for concurrent use.
type Deck struct {
	api  DeckAPI
	opts ListOptions

	cards    []domain.Vocabulary
	idx      int
	selected map[string]struct{}

	// EnglishFront shows English first; Flip reveals the other side.
	EnglishFront bool
	flipped      bool
}

// NewDeck returns an empty deck that loads with opts.
func NewDeck(api DeckAPI, opts ListOptions) *Deck {
	return &Deck{
		api:          api,
		opts:         opts,
		selected:     map[string]struct{}{},
		EnglishFront: true,
	}
}

// Load fetches the cards. The current position is kept by id when the card
// survives, clamped otherwise; selections of vanished cards are dropped.
func (d *Deck) Load(ctx context.Context) error {
	items, err := d.api.List(ctx, d.opts)
	if err != nil {
		return err
	}
	var curID string
	if c, ok := d.Current(); ok {
		curID = c.ID
	}

	d.cards = items
	d.flipped = false

	present := make(map[string]struct{}, len(items))
	for _, v := range items {
		present[v.ID] = struct{}{}
	}
	for id := range d.selected {
		if _, ok := present[id]; !ok {
			delete(d.selected, id)
		}
	}

	for i, v := range items {
		if v.ID == curID {
			d.idx = i
			return nil
		}
	}
	if d.idx >= len(items) {
		d.idx = len(items) - 1
	}
	if d.idx < 0 {
		d.idx = 0
	}
	return nil
}

// Len returns the number of cards.
func (d *Deck) Len() int { return len(d.cards) }

// Index returns the position of the current card.
func (d *Deck) Index() int { return d.idx }

// Cards returns a copy of the cards in server order.
func (d *Deck) Cards() []domain.Vocabulary {
	out := make([]domain.Vocabulary, len(d.cards))
	copy(out, d.cards)
	return out
}

// Current returns the card under review.
func (d *Deck) Current() (domain.Vocabulary, bool) {
	if len(d.cards) == 0 {
		return domain.Vocabulary{}, false
	}
	return d.cards[d.idx], true
}

// Next moves forward, wrapping to the first card.
func (d *Deck) Next() {
	if len(d.cards) == 0 {
		return
	}
	d.idx = (d.idx + 1) % len(d.cards)
	d.flipped = false
}

// Prev moves back, wrapping to the last card.
func (d *Deck) Prev() {
	if len(d.cards) == 0 {
		return
	}
	d.idx = (d.idx - 1 + len(d.cards)) % len(d.cards)
	d.flipped = false
}

// Flip turns the current card over.
func (d *Deck) Flip() { d.flipped = !d.flipped }

// ShowingEnglish reports whether the English side is up.
func (d *Deck) ShowingEnglish() bool { return d.EnglishFront != d.flipped }

// Toggle flips id in or out of the selection.
func (d *Deck) Toggle(id string) {
	if _, ok := d.selected[id]; ok {
		delete(d.selected, id)
		return
	}
	d.selected[id] = struct{}{}
}

// IsSelected reports whether id is selected.
func (d *Deck) IsSelected(id string) bool {
	_, ok := d.selected[id]
	return ok
}

// Selected returns the selected ids in card order.
func (d *Deck) Selected() []string {
	out := make([]string, 0, len(d.selected))
	for _, v := range d.cards {
		if _, ok := d.selected[v.ID]; ok {
			out = append(out, v.ID)
		}
	}
	return out
}

// ClearSelection empties the selection.
func (d *Deck) ClearSelection() { clear(d.selected) }

// Review reschedules the current card and replaces it in place with the
// stored record. The deck is not refetched, so the card keeps its position
// even though its target moved.
func (d *Deck) Review(ctx context.Context, step string) (*domain.Vocabulary, error) {
	cur, ok := d.Current()
	if !ok {
		return nil, ErrEmptyDeck
	}
	v, err := d.api.Review(ctx, cur.ID, step)
	if err != nil {
		return nil, err
	}
	d.cards[d.idx] = *v
	d.flipped = false
	return v, nil
}

// BatchReview reviews every selected card with step, then clears the
// selection and refetches.
func (d *Deck) BatchReview(ctx context.Context, step string) (*services.BatchResult, error) {
	ids := d.Selected()
	if len(ids) == 0 {
		return nil, ErrNothingSelected
	}
	res, err := d.api.BatchReview(ctx, ids, step)
	if err != nil {
		return nil, err
	}
	d.ClearSelection()
	return res, d.Load(ctx)
}

// Delete removes the selected cards, then clears the selection and refetches.
func (d *Deck) Delete(ctx context.Context) (int64, error) {
	ids := d.Selected()
	if len(ids) == 0 {
		return 0, ErrNothingSelected
	}
	n, err := d.api.Delete(ctx, ids)
	if err != nil {
		return 0, err
	}
	d.ClearSelection()
	return n, d.Load(ctx)
}
