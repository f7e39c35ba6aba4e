package preview

import (
	"errors"

	"github.com/vitrinelabs/vitrine/internal/dom"
	"github.com/vitrinelabs/vitrine/internal/storefront"
)

// ErrNotOwner is returned when an actor asks to preview a store they do
// not own.
var ErrNotOwner = errors.New("preview restricted to the store owner")

// Authorize checks that the actor may open a live preview of the store.
// Only the owner qualifies; everyone else gets the denial placeholder.
func Authorize(actorID string, store storefront.Store) error {
	if actorID == "" || store.OwnerID == "" || actorID != store.OwnerID {
		return ErrNotOwner
	}
	return nil
}

// DenialDocument renders the placeholder shown instead of a restricted
// preview. It is built from constants only: no store name, colors,
// catalog, or any other tenant data may appear here.
func DenialDocument() *dom.Document {
	body := dom.NewNode("body")
	body.AddClass("preview-denied")

	box := dom.NewNode("div")
	box.AddClass("denied-box")

	title := dom.NewNode("h1")
	title.SetText("Acesso restrito")
	box.Append(title)

	msg := dom.NewNode("p")
	msg.SetText("Esta visualização está disponível apenas para o proprietário da loja.")
	box.Append(msg)

	body.Append(box)
	return dom.NewDocument(dom.NewNode("html").Append(body))
}
