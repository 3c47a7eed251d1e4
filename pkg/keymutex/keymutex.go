package keymutex

import "sync"

// KeyMutex реестр мьютексов по ключу
// Используется для сериализации операций над одним слотом:
// операции над разными ключами выполняются независимо,
// операции над одним ключом - строго последовательно
type KeyMutex struct {
	mu    sync.Mutex
	locks map[int64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

// New создает новый реестр мьютексов
func New() *KeyMutex {
	return &KeyMutex{
		locks: make(map[int64]*entry),
	}
}

// Lock блокирует мьютекс для указанного ключа
func (k *KeyMutex) Lock(key int64) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &entry{}
		k.locks[key] = e
	}
	// Счетчик ссылок нужен, чтобы Unlock не удалил мьютекс,
	// пока его ждут другие горутины
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
}

// Unlock освобождает мьютекс для указанного ключа
// Мьютекс удаляется из реестра, когда его больше никто не ждет
func (k *KeyMutex) Unlock(key int64) {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		k.mu.Unlock()
		panic("keymutex: unlock of unlocked key")
	}
	e.refs--
	if e.refs == 0 {
		delete(k.locks, key)
	}
	k.mu.Unlock()

	e.mu.Unlock()
}
