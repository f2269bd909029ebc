package geo

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDistance(t *testing.T) {
	// 同一点距离为0
	p := Point{Lat: 39.9042, Lng: 116.4074}
	assert.InDelta(t, 0, Distance(p, p), 0.001)

	// 赤道上经度相差1度约为111.2公里
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 1}
	assert.InDelta(t, 111195, Distance(a, b), 100)

	// 距离对称
	assert.InDelta(t, Distance(a, b), Distance(b, a), 0.001)
}

func TestBearing(t *testing.T) {
	origin := Point{Lat: 31.2304, Lng: 121.4737}

	// 正北
	north := Point{Lat: 31.3304, Lng: 121.4737}
	assert.InDelta(t, 0, Bearing(origin, north), 0.5)

	// 正东
	east := Point{Lat: 31.2304, Lng: 121.5737}
	assert.InDelta(t, 90, Bearing(origin, east), 0.5)

	// 正南
	south := Point{Lat: 31.1304, Lng: 121.4737}
	assert.InDelta(t, 180, Bearing(origin, south), 0.5)

	// 正西
	west := Point{Lat: 31.2304, Lng: 121.3737}
	assert.InDelta(t, 270, Bearing(origin, west), 0.5)
}

func TestOffset(t *testing.T) {
	origin := Point{Lat: 39.9042, Lng: 116.4074}

	// 移动后的距离应与指定距离一致
	for _, bearing := range []float64{0, 45, 90, 135, 180, 225, 270, 315} {
		dest := Offset(origin, 500, bearing)
		assert.InDelta(t, 500, Distance(origin, dest), 1,
			"方位角 %.0f 偏移距离不正确", bearing)
	}
}

func TestStepToward(t *testing.T) {
	from := Point{Lat: 39.9042, Lng: 116.4074}
	to := Offset(from, 400, 90)

	// 一步100米应缩短约100米距离
	moved := StepToward(from, to, 100)
	assert.InDelta(t, 300, Distance(moved, to), 1)

	// 步长超过剩余距离时直接到达
	arrived := StepToward(from, to, 1000)
	assert.Equal(t, to, arrived)
}

func TestRandomPointInRing(t *testing.T) {
	r := rand.New(rand.NewSource(42))
	center := Point{Lat: 39.9042, Lng: 116.4074}

	for i := 0; i < 200; i++ {
		p := RandomPointInRing(r, center, 200, 500)
		d := Distance(center, p)
		assert.GreaterOrEqual(t, d, 199.0)
		assert.LessOrEqual(t, d, 501.0)
	}

	// 最小最大相等时半径固定
	p := RandomPointInRing(r, center, 300, 300)
	assert.InDelta(t, 300, Distance(center, p), 1)
}
