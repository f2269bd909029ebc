// Package geo 提供生存游戏使用的地理数学函数：
// 距离、方位角与环形区域随机取点，均为纯函数。
package geo

import (
	"math"
	"math/rand"
)

// EarthRadius 地球半径（米）
const EarthRadius = 6371000.0

// Point 经纬度坐标
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance 计算两点间的大圆距离（米），Haversine公式
func Distance(from, to Point) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLat := (to.Lat - from.Lat) * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadius * c
}

// Bearing 计算从from到to的初始方位角（相对正北，0-360度）
func Bearing(from, to Point) float64 {
	lat1 := from.Lat * math.Pi / 180
	lat2 := to.Lat * math.Pi / 180
	dLng := (to.Lng - from.Lng) * math.Pi / 180

	y := math.Sin(dLng) * math.Cos(lat2)
	x := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLng)

	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Offset 从起点沿指定方位角（度）移动指定距离（米）后的坐标
func Offset(from Point, distance, bearing float64) Point {
	lat1 := from.Lat * math.Pi / 180
	lng1 := from.Lng * math.Pi / 180
	brng := bearing * math.Pi / 180
	d := distance / EarthRadius

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(d) +
		math.Cos(lat1)*math.Sin(d)*math.Cos(brng))
	lng2 := lng1 + math.Atan2(
		math.Sin(brng)*math.Sin(d)*math.Cos(lat1),
		math.Cos(d)-math.Sin(lat1)*math.Sin(lat2),
	)

	return Point{
		Lat: lat2 * 180 / math.Pi,
		Lng: lng2 * 180 / math.Pi,
	}
}

// StepToward 从from朝to移动step米；若step不小于两点距离则直接到达to
func StepToward(from, to Point, step float64) Point {
	dist := Distance(from, to)
	if dist <= step {
		return to
	}
	return Offset(from, step, Bearing(from, to))
}

// RandomPointInRing 在以center为圆心、半径[minDist, maxDist]的圆环内随机取点。
// 半径按均匀分布采样，因此靠内圈的点密度更高，这是刻意保留的游戏特性。
func RandomPointInRing(r *rand.Rand, center Point, minDist, maxDist float64) Point {
	radius := minDist
	if maxDist > minDist {
		radius = minDist + r.Float64()*(maxDist-minDist)
	}
	bearing := r.Float64() * 360

	return Offset(center, radius, bearing)
}
