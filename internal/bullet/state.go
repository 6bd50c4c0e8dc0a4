package bullet

// State is the kinematic state of one bullet. A State is owned by a single
// runner and its host; it is not safe for concurrent use.
type State struct {
	x, y      float64
	direction float64
	speed     float64
	accelX    float64
	accelY    float64
	mirrored  bool

	dirInterp    interp
	speedInterp  interp
	accelXInterp interp
	accelYInterp interp
}

// New returns a bullet at (x, y) heading in direction at speed.
func New(x, y, direction, speed float64, mirrored bool) *State {
	return &State{x: x, y: y, direction: direction, speed: speed, mirrored: mirrored}
}

func (s *State) Position() (x, y float64) { return s.x, s.y }
func (s *State) Direction() float64       { return s.direction }
func (s *State) Speed() float64           { return s.speed }
func (s *State) Accel() (ax, ay float64)  { return s.accelX, s.accelY }
func (s *State) Mirrored() bool           { return s.mirrored }

// Velocity returns the per-frame displacement.
func (s *State) Velocity() (vx, vy float64) {
	hx, hy := Heading(s.direction)
	return s.speed*hx + s.accelX, s.speed*hy + s.accelY
}

// Interpolating reports whether any change is still in progress.
func (s *State) Interpolating() bool {
	return s.dirInterp.active || s.speedInterp.active || s.accelXInterp.active || s.accelYInterp.active
}

// ChangeDirection turns linearly to target over term frames. Callers pick
// the target; no wrapping is applied here.
func (s *State) ChangeDirection(target float64, term int) {
	s.direction = s.dirInterp.begin(s.direction, target, term)
}

// ChangeSpeed moves the speed linearly to target over term frames.
func (s *State) ChangeSpeed(target float64, term int) {
	s.speed = s.speedInterp.begin(s.speed, target, term)
}

// ChangeAccelX moves the horizontal accel velocity to target over term
// frames.
func (s *State) ChangeAccelX(target float64, term int) {
	s.accelX = s.accelXInterp.begin(s.accelX, target, term)
}

// ChangeAccelY moves the vertical accel velocity to target over term frames.
func (s *State) ChangeAccelY(target float64, term int) {
	s.accelY = s.accelYInterp.begin(s.accelY, target, term)
}

// SetPosition moves the bullet.
func (s *State) SetPosition(x, y float64) {
	s.x, s.y = x, y
}

// SetDirection sets the direction and cancels any turn in progress.
func (s *State) SetDirection(deg float64) {
	s.dirInterp.cancel()
	s.direction = deg
}

// SetSpeed sets the speed and cancels any speed change in progress.
func (s *State) SetSpeed(speed float64) {
	s.speedInterp.cancel()
	s.speed = speed
}

// Update advances one frame: interpolations first, then the position by
// the resulting velocity.
func (s *State) Update() {
	if s.dirInterp.active {
		s.direction = s.dirInterp.step()
	}
	if s.speedInterp.active {
		s.speed = s.speedInterp.step()
	}
	if s.accelXInterp.active {
		s.accelX = s.accelXInterp.step()
	}
	if s.accelYInterp.active {
		s.accelY = s.accelYInterp.step()
	}
	vx, vy := s.Velocity()
	s.x += vx
	s.y += vy
}
