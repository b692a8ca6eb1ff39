package redis

import (
	"context"
	"errors"
	"testing"

	"github.com/dwikikusuma/shoping-cart/internal/cart/domain"
	"github.com/go-redis/redismock/v9"
)

func TestLoad(t *testing.T) {
	db, mock := redismock.NewClientMock()
	slot := NewCartSlot(db, "")

	mock.ExpectGet(domain.StorageKey).SetVal(`[{"id":7,"title":"Tênis B","price":179.9,"image":"b.jpg","amount":2}]`)

	cart, err := slot.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(cart) != 1 || cart[0].ID != 7 || cart[0].Amount != 2 {
		t.Errorf("unexpected cart: %+v", cart)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLoadMissingKey(t *testing.T) {
	db, mock := redismock.NewClientMock()
	slot := NewCartSlot(db, "cart:test")

	mock.ExpectGet("cart:test").RedisNil()

	cart, err := slot.Load(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if cart == nil || len(cart) != 0 {
		t.Errorf("expected empty cart, got %+v", cart)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestLoadCorrupt(t *testing.T) {
	db, mock := redismock.NewClientMock()
	slot := NewCartSlot(db, "")

	mock.ExpectGet(domain.StorageKey).SetVal(`not-json`)

	_, err := slot.Load(context.Background())
	if !errors.Is(err, domain.ErrCorruptCart) {
		t.Errorf("expected ErrCorruptCart, got %v", err)
	}
}

func TestLoadError(t *testing.T) {
	db, mock := redismock.NewClientMock()
	slot := NewCartSlot(db, "")

	mock.ExpectGet(domain.StorageKey).SetErr(errors.New("connection refused"))

	if _, err := slot.Load(context.Background()); err == nil {
		t.Error("expected error")
	}
}

func TestSave(t *testing.T) {
	db, mock := redismock.NewClientMock()
	slot := NewCartSlot(db, "")

	cart := domain.Cart{
		{Product: domain.Product{ID: 7, Title: "Tênis B", Price: 179.9, Image: "b.jpg"}, Amount: 2},
	}
	mock.ExpectSet(domain.StorageKey, `[{"id":7,"title":"Tênis B","price":179.9,"image":"b.jpg","amount":2}]`, 0).SetVal("OK")

	if err := slot.Save(context.Background(), cart); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestSaveEmpty(t *testing.T) {
	db, mock := redismock.NewClientMock()
	slot := NewCartSlot(db, "")

	mock.ExpectSet(domain.StorageKey, `[]`, 0).SetVal("OK")

	if err := slot.Save(context.Background(), domain.Cart{}); err != nil {
		t.Errorf("expected no error, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}
