package features

import (
	"crypto/md5"
	"math/big"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBucketDeterministic(t *testing.T) {
	inputs := []string{"ITEM-500", "B001", "INV-1001", "ITEM-500B001", "ITEM-5001", ""}
	for _, in := range inputs {
		first := Bucket(in, 2000)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, Bucket(in, 2000), "bucket for %q must not vary across calls", in)
		}
	}
}

func TestBucketRange(t *testing.T) {
	values := []string{"a", "Item_123", "ITEM-500", "B001", "some longer categorical value"}
	for _, n := range []int{1, 2, 10, 200, 2000, 5000} {
		for _, v := range values {
			b := Bucket(v, n)
			assert.GreaterOrEqual(t, b, 0)
			assert.Less(t, b, n)
		}
	}
}

func TestBucketEmptyMapsToZero(t *testing.T) {
	for _, n := range []int{1, 10, 2000, 5000} {
		assert.Equal(t, 0, Bucket("", n))
	}
}

// The byte-wise reduction must agree with interpreting the full MD5 digest
// as one big unsigned integer, which is how the training pipeline defined
// the bucket originally.
func TestBucketMatchesBigIntReduction(t *testing.T) {
	for _, v := range []string{"ITEM-500", "B001", "x", "Item_123"} {
		for _, n := range []int{7, 200, 2000, 5000} {
			sum := md5.Sum([]byte(v))
			var x big.Int
			x.SetBytes(sum[:])
			want := int(new(big.Int).Mod(&x, big.NewInt(int64(n))).Int64())
			assert.Equal(t, want, Bucket(v, n), "value %q buckets %d", v, n)
		}
	}
}

func TestBucketCrossFeatureConsistency(t *testing.T) {
	item, branch := "ITEM-500", "B001"
	assert.Equal(t, Bucket(item+branch, 5000), Bucket("ITEM-500B001", 5000))
	// Concatenation order matters.
	assert.NotEqual(t, Bucket(item+branch, 5000), Bucket(branch+item, 5000))
}
