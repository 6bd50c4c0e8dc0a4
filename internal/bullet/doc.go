// Package bullet holds the mutable kinematic state of one bullet.
//
// Angles are degrees in the BulletML convention: 0 points up, angles grow
// clockwise, and y grows downward as on screen. A bullet moving at speed s
// in direction d has velocity
//
//	vx = s*sin(d) + ax
//	vy = -s*cos(d) + ay
//
// where (ax, ay) is the accel velocity set by <accel>.
//
// ChangeDirection, ChangeSpeed and the accel setters record a linear
// interpolation that Update advances by one frame at a time.
package bullet
