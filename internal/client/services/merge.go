package services

// Record is the merge contract shared by the three synced collections:
// stable globally-unique id plus an optional timestamp (epoch ms, zero
// meaning undated).
type Record interface {
	RecordID() string
	RecordTimestamp() int64
}

// Merge combines a remote collection into the local one without data loss.
// Local records keep their positions; unseen remote records are appended in
// their incoming order. When both sides carry a record with the same id,
// the remote copy wins only if it is strictly newer, or if the local copy
// is undated while the remote one is dated. Ties, an undated remote, and
// the both-undated case all keep the local record.
//
// Merge is pure and idempotent: merging the same remote input twice yields
// the same result as merging it once.
func Merge[T Record](local, remote []T) []T {
	result := make([]T, len(local))
	copy(result, local)

	index := make(map[string]int, len(result))
	for i, r := range result {
		index[r.RecordID()] = i
	}

	for _, rem := range remote {
		i, ok := index[rem.RecordID()]
		if !ok {
			index[rem.RecordID()] = len(result)
			result = append(result, rem)
			continue
		}

		loc := result[i]
		remTS, locTS := rem.RecordTimestamp(), loc.RecordTimestamp()
		if remTS != 0 && (locTS == 0 || remTS > locTS) {
			result[i] = rem
		}
	}

	return result
}
