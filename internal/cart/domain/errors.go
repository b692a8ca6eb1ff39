package domain

import "errors"

var (
	ErrOutOfStock   = errors.New("requested amount out of stock")
	ErrAddFailed    = errors.New("add product failed")
	ErrRemoveFailed = errors.New("remove product failed")
	ErrUpdateFailed = errors.New("update product amount failed")

	ErrNotInCart   = errors.New("product not in cart")
	ErrCorruptCart = errors.New("stored cart is corrupt")
)

type FailureKind string

const (
	KindOutOfStock   FailureKind = "out_of_stock"
	KindAddFailed    FailureKind = "add_failed"
	KindRemoveFailed FailureKind = "remove_failed"
	KindUpdateFailed FailureKind = "update_failed"
)

// Message is the text shown to the shopper.
func (k FailureKind) Message() string {
	switch k {
	case KindOutOfStock:
		return "Quantidade solicitada fora de estoque"
	case KindAddFailed:
		return "Erro na adição do produto"
	case KindRemoveFailed:
		return "Erro na remoção do produto"
	case KindUpdateFailed:
		return "Erro na alteração de quantidade do produto"
	default:
		return ""
	}
}

// KindOf reports which failure kind err belongs to. OutOfStock wins over the
// operation-level kinds since an out-of-stock error is never wrapped by them.
func KindOf(err error) (FailureKind, bool) {
	switch {
	case err == nil:
		return "", false
	case errors.Is(err, ErrOutOfStock):
		return KindOutOfStock, true
	case errors.Is(err, ErrAddFailed):
		return KindAddFailed, true
	case errors.Is(err, ErrRemoveFailed):
		return KindRemoveFailed, true
	case errors.Is(err, ErrUpdateFailed):
		return KindUpdateFailed, true
	default:
		return "", false
	}
}
