package pixpack

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapacityOf_Boundary(t *testing.T) {
	c, err := CapacityOf(8, 12)
	require.NoError(t, err)
	assert.Equal(t, 0, c)

	_, err = CapacityOf(5, 19)
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Shortfall)

	c, err = CapacityOf(100, 100)
	require.NoError(t, err)
	assert.Equal(t, 9904, c)
}

func TestPlanSplit_HeaderOnlyImage(t *testing.T) {
	images := []Image{img("a.png", 8, 12, 1)}
	plan, err := PlanSplit(images, 0)
	require.NoError(t, err)
	require.Len(t, plan, 1)
	assert.Equal(t, 0, plan[0].Bits)

	_, err = PlanSplit(images, 1)
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 1, ce.Shortfall)
}

func TestPlanSplit_TooSmallImage(t *testing.T) {
	_, err := PlanSplit([]Image{img("big.png", 20, 20, 1), img("tiny.png", 5, 19, 2)}, 8)
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "tiny.png", ce.Image)
}

func TestPlanSplit_InsufficientCapacity(t *testing.T) {
	_, err := PlanSplit([]Image{img("a.png", 100, 100, 1)}, 80000)
	require.ErrorIs(t, err, ErrCapacity)
	var ce *CapacityError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, 70096, ce.Shortfall)
	assert.Equal(t, 9904, ce.Capacity)
	assert.Equal(t, 80000, ce.Need)
}

func TestPlanSplit_DeadBeefScenario(t *testing.T) {
	images := []Image{img("0.png", 12, 9, 1), img("1.png", 12, 9, 2)}
	plan, err := PlanSplit(images, 24)
	require.NoError(t, err)
	require.Len(t, plan, 2)
	assert.Equal(t, Allotment{Image: images[0], Index: 0, Offset: 0, Bits: 12, Capacity: 12}, plan[0])
	assert.Equal(t, Allotment{Image: images[1], Index: 1, Offset: 12, Bits: 12, Capacity: 12}, plan[1])
}

func TestPlanSplit_GreedyStopsEarly(t *testing.T) {
	images := []Image{
		img("a.png", 20, 20, 1), // 304
		img("b.png", 8, 12, 2),  // 0
		img("c.png", 20, 20, 3), // 304
		img("d.png", 20, 20, 4), // 304
	}
	plan, err := PlanSplit(images, 400)
	require.NoError(t, err)
	require.Len(t, plan, 3)
	assert.Equal(t, []int{304, 0, 96}, []int{plan[0].Bits, plan[1].Bits, plan[2].Bits})
	sum := 0
	for _, a := range plan {
		assert.LessOrEqual(t, a.Bits, a.Capacity)
		sum += a.Bits
	}
	assert.Equal(t, 400, sum)
}

func TestPlanSplit_Deterministic(t *testing.T) {
	images := []Image{img("c.png", 30, 7, 1), img("a.png", 11, 13, 2), img("b.png", 40, 40, 3)}
	first, err := PlanSplit(SortImages(images, nil), 1500)
	require.NoError(t, err)
	shuffled := []Image{images[2], images[0], images[1]}
	for i := 0; i < 5; i++ {
		again, err := PlanSplit(SortImages(shuffled, nil), 1500)
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, "a.png", first[0].Image.Name)
}

func TestPlanSplit_NoImages(t *testing.T) {
	_, err := PlanSplit(nil, 8)
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestProjectCapacity(t *testing.T) {
	dims := []Dimensions{{"a.png", 20, 20}, {"b.png", 20, 20}, {"c.png", 20, 20}}
	rep, err := ProjectCapacity(50, dims)
	require.NoError(t, err)
	assert.True(t, rep.Fits())
	assert.Equal(t, 400, rep.PayloadBits)
	assert.Equal(t, 912, rep.TotalCapacity)
	assert.Equal(t, 2, rep.Chunks)
	assert.Equal(t, []int{304, 96, 0}, []int{rep.Images[0].Allotted, rep.Images[1].Allotted, rep.Images[2].Allotted})
	assert.Equal(t, []int{0, 1, -1}, []int{rep.Images[0].Chunk, rep.Images[1].Chunk, rep.Images[2].Chunk})

	rep, err = ProjectCapacity(10000, []Dimensions{{"a.png", 100, 100}})
	require.NoError(t, err)
	assert.False(t, rep.Fits())
	assert.Equal(t, 70096, rep.Shortfall)
	assert.Equal(t, -1, rep.Images[0].Chunk)
}

func TestProjectCapacity_MatchesPlan(t *testing.T) {
	images := []Image{img("a.png", 13, 17, 1), img("b.png", 9, 31, 2), img("c.png", 25, 5, 3)}
	dims := make([]Dimensions, len(images))
	for i, im := range images {
		dims[i] = im.dims()
	}
	for _, n := range []int{0, 1, 20, 40} {
		rep, err := ProjectCapacity(n, dims)
		require.NoError(t, err)
		plan, err := PlanSplit(images, n*8)
		require.NoError(t, err)
		require.Equal(t, len(plan), rep.Chunks)
		for i, a := range plan {
			assert.Equal(t, a.Bits, rep.Images[i].Allotted)
		}
	}
}

func TestSortImages_Stable(t *testing.T) {
	a1, a2, b := img("a", 10, 10, 1), img("a", 10, 10, 2), img("b", 10, 10, 3)
	out := SortImages([]Image{b, a1, a2}, nil)
	assert.Same(t, a1.Pixels, out[0].Pixels)
	assert.Same(t, a2.Pixels, out[1].Pixels)
	assert.Same(t, b.Pixels, out[2].Pixels)
}
