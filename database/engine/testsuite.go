package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// TestSuiteEngine exercises an Engine implementation with the access
// patterns of the record stores built on top of it: JSON values under
// prefixed keys, prefix scans and a singleton pointer key. Every driver
// must pass the same suite so stores can switch drivers by configuration.
func TestSuiteEngine(t *testing.T, new func() Engine) {
	t.Run("TransactionSnapshot", func(t *testing.T) {
		engine := new()
		defer engine.Close()

		// Create new transaction
		tx, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")

		// Put some data into the transaction
		key := []byte("c:1f0a6bdd-9148-4ed2-9e9c-1a3b6cf51c97")
		value := []byte(`{"uuid":"1f0a6bdd-9148-4ed2-9e9c-1a3b6cf51c97"}`)
		err = tx.Put(key, value)
		require.NoErrorf(t, err, "failed to put data into transaction")

		// A snapshot taken before the commit must not see the record
		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		has, err := snapshot.Has(key)
		require.NoErrorf(t, err, "failed to check if key exists in snapshot")
		require.Falsef(t, has, "expected key to not exist in snapshot")

		gotValue, err := snapshot.Get(key)
		require.Errorf(t, err, "expected to get error when getting value from snapshot")
		require.Nil(t, gotValue, "expected to get nil value from snapshot")
		snapshot.Release()

		// Commit the transaction
		err = tx.Commit()
		require.NoErrorf(t, err, "failed to commit transaction")

		// A snapshot taken after the commit sees it
		snapshot, err = engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		gotValue, err = snapshot.Get(key)
		require.NoErrorf(t, err, "failed to get value from snapshot")
		require.Equalf(t, value, gotValue, "snapshot value mismatch")
		snapshot.Release()
	})

	t.Run("Overwrite", func(t *testing.T) {
		engine := new()
		defer engine.Close()

		key := []byte("active")

		for _, value := range []string{"aaaa", "bbbb"} {
			tx, err := engine.Transaction()
			require.NoErrorf(t, err, "failed to create transaction")
			require.NoErrorf(t, tx.Put(key, []byte(value)), "failed to put data into transaction")
			require.NoErrorf(t, tx.Commit(), "failed to commit transaction")
		}

		// Last write wins
		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")
		gotValue, err := snapshot.Get(key)
		require.NoErrorf(t, err, "failed to get value from snapshot")
		require.Equalf(t, []byte("bbbb"), gotValue, "overwritten value mismatch")
		snapshot.Release()

		// Delete removes the record
		tx, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")
		require.NoErrorf(t, tx.Delete(key), "failed to delete key in transaction")
		require.NoErrorf(t, tx.Commit(), "failed to commit transaction")

		snapshot, err = engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")
		has, err := snapshot.Has(key)
		require.NoErrorf(t, err, "failed to check if key exists in snapshot")
		require.Falsef(t, has, "expected deleted key to not exist in snapshot")
		snapshot.Release()
	})

	t.Run("PrefixIterator", func(t *testing.T) {
		// Key layout of the challenge store: challenge records under c:,
		// per-challenge solutions under s:<uuid>:, saves under v:<uuid>:,
		// and the bare active pointer.
		kvs := map[string]string{
			"active":      "aaaa",
			"c:aaaa":      "challenge-a",
			"c:bbbb":      "challenge-b",
			"s:aaaa:0001": "solution-1",
			"s:aaaa:0002": "solution-2",
			"s:bbbb:0001": "solution-3",
			"v:aaaa:0001": "save-1",
		}

		for _, test := range []struct {
			name      string
			ranges    *Range
			expectkvs [][2]string
		}{
			{
				name:   "all challenges",
				ranges: BytesPrefix([]byte("c:")),
				expectkvs: [][2]string{
					{"c:aaaa", "challenge-a"},
					{"c:bbbb", "challenge-b"},
				},
			},
			{
				name:   "solutions of one challenge",
				ranges: BytesPrefix([]byte("s:aaaa:")),
				expectkvs: [][2]string{
					{"s:aaaa:0001", "solution-1"},
					{"s:aaaa:0002", "solution-2"},
				},
			},
			{
				name:      "saves of a challenge without saves",
				ranges:    BytesPrefix([]byte("v:bbbb:")),
				expectkvs: nil,
			},
			{
				name:   "explicit range excludes the limit key",
				ranges: &Range{Start: []byte("c:aaaa"), Limit: []byte("c:bbbb")},
				expectkvs: [][2]string{
					{"c:aaaa", "challenge-a"},
				},
			},
			{
				name:      "empty range",
				ranges:    &Range{Start: []byte("c:aaaa"), Limit: []byte("c:aaaa")},
				expectkvs: nil,
			},
		} {
			engine := new()
			defer engine.Close()

			tx, err := engine.Transaction()
			require.NoErrorf(t, err, "%s: failed to create transaction", test.name)
			for k, v := range kvs {
				err = tx.Put([]byte(k), []byte(v))
				require.NoErrorf(t, err, "%s: failed to put data into transaction", test.name)
			}
			err = tx.Commit()
			require.NoErrorf(t, err, "%s: failed to commit transaction", test.name)

			snapshot, err := engine.Snapshot()
			require.NoErrorf(t, err, "%s: failed to create snapshot", test.name)

			iter := snapshot.NewIterator(test.ranges)
			var idx int
			for iter.Next() {
				if idx >= len(test.expectkvs) {
					require.FailNowf(t, "unexpected key-value pair", "%s: key: %s, value: %s", test.name, iter.Key(), iter.Value())
				}

				require.Equalf(t, []byte(test.expectkvs[idx][0]), iter.Key(), "%s: key mismatch", test.name)
				require.Equalf(t, []byte(test.expectkvs[idx][1]), iter.Value(), "%s: value mismatch", test.name)
				idx++
			}
			require.Equalf(t, len(test.expectkvs), idx, "%s: key-value pair count mismatch", test.name)

			iter.Release()
			snapshot.Release()
		}
	})

	t.Run("DbClose", func(t *testing.T) {
		engine := new()

		// release
		transaction, err := engine.Transaction()
		require.NoErrorf(t, err, "failed to create transaction")

		transaction.Discard()
		transaction.Discard() // multiple calls to discard should be safe
		err = transaction.Commit()
		require.Errorf(t, err, "expected to get error when committing discarded transaction")

		snapshot, err := engine.Snapshot()
		require.NoErrorf(t, err, "failed to create snapshot")

		iterator := snapshot.NewIterator(&Range{})
		require.NoErrorf(t, iterator.Error(), "failed to create iterator")
		iterator.Release()
		iterator.Release() // multiple calls to release should be safe

		snapshot.Release()
		snapshot.Release() // multiple calls to release should be safe
		_, err = snapshot.Get([]byte("active"))
		require.Errorf(t, err, "expected to get error when getting value from released snapshot")

		err = engine.Close()
		require.NoErrorf(t, err, "failed to close engine")

		// Ensure that the engine is closed
		err = engine.Close()
		require.Errorf(t, err, "expected to get error when closing closed engine")

		// Get a transaction from a closed engine
		_, err = engine.Transaction()
		require.Errorf(t, err, "expected to get error when creating transaction from closed engine")

		// Get a snapshot from a closed engine
		_, err = engine.Snapshot()
		require.Errorf(t, err, "expected to get error when creating snapshot from closed engine")
	})

}
