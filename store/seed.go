package store

import (
	"fmt"

	"go.uber.org/zap"
)

var demoUsers = []NewUser{
	{Username: "ana.silva", Name: "Ana Silva", Location: "Rio de Janeiro", Bio: "Photographer | Beach lover",
		Avatar: "https://images.unsplash.com/photo-1534528741775-53994a69daeb?ixlib=rb-4.0.3&auto=format&fit=crop&w=200&h=200&q=80"},
	{Username: "carlos.mendes", Name: "Carlos Mendes", Location: "São Paulo", Bio: "Adventure enthusiast",
		Avatar: "https://images.unsplash.com/photo-1507003211169-0a1dd7228f2d?ixlib=rb-4.0.3&auto=format&fit=crop&w=200&h=200&q=80"},
	{Username: "sofia.almeida", Name: "Sofia Almeida", Location: "Recife", Bio: "Food blogger",
		Avatar: "https://images.unsplash.com/photo-1494790108377-be9c29b29330?ixlib=rb-4.0.3&auto=format&fit=crop&w=200&h=200&q=80"},
	{Username: "miguel.santos", Name: "Miguel Santos", Location: "Florianópolis", Bio: "Surfer | Travel enthusiast",
		Avatar: "https://images.unsplash.com/photo-1539571696357-5a69c17a67c6?ixlib=rb-4.0.3&auto=format&fit=crop&w=200&h=200&q=80"},
	{Username: "julia.lima", Name: "Julia Lima", Location: "Salvador", Bio: "Car enthusiast | Fashion",
		Avatar: "https://images.unsplash.com/photo-1517841905240-472988babdf9?ixlib=rb-4.0.3&auto=format&fit=crop&w=200&h=200&q=80"},
	{Username: "rafael.costa", Name: "Rafael Costa", Location: "Brasília", Bio: "Fotógrafo | Viajante | Amante da natureza",
		Avatar: "https://images.unsplash.com/photo-1531746020798-e6953c6e8e04?ixlib=rb-4.0.3&auto=format&fit=crop&w=200&h=200&q=80"},
}

// demoPosts are owned by demoUsers[i] in order.
var demoPosts = []NewPost{
	{Caption: "Curtindo esse dia maravilhoso na praia! 🌊☀️ #ferias #verao",
		ImageURL: "https://images.unsplash.com/photo-1533651180995-3b8dcd33e834?ixlib=rb-4.0.3&auto=format&fit=crop&w=900&q=80"},
	{Caption: "Aventura de hoje! Trilha incrível com paisagens de tirar o fôlego 🏞️ #aventura #natureza",
		ImageURL: "https://images.unsplash.com/photo-1506157786151-b8491531f063?ixlib=rb-4.0.3&auto=format&fit=crop&w=900&q=80"},
	{Caption: "Almoço perfeito! 🍱 Experimentando essa culinária incrível #gastronomia #comida",
		ImageURL: "https://images.unsplash.com/photo-1540189549336-e6e99c3679fe?ixlib=rb-4.0.3&auto=format&fit=crop&w=900&q=80"},
	{Caption: "Novo hobby! Aprendendo a surfar nas ondas perfeitas de Floripa 🏄‍♂️ #surf #praia",
		ImageURL: "https://images.unsplash.com/photo-1540339832862-474599807836?ixlib=rb-4.0.3&auto=format&fit=crop&w=900&q=80"},
	{Caption: "Meu novo carro chegou! 🚗 Sonho realizado ✨ #carronovo #realizacao",
		ImageURL: "https://images.unsplash.com/photo-1511919884226-fd3cad34687c?ixlib=rb-4.0.3&auto=format&fit=crop&w=900&q=80"},
}

const demoPassword = "password123"

// Seed populates the demo community into a store that has never held users
// or posts. It returns ErrNotEmpty otherwise.
func (s *Store) Seed() error {
	s.mu.RLock()
	used := s.users.Seq() > 0 || s.posts.Seq() > 0
	s.mu.RUnlock()
	if used {
		return ErrNotEmpty
	}
	return s.seed()
}

// seed populates the demo community through the public operations, so every
// counter and notification comes out the way live traffic would produce it.
// Ids below are 1-based positions in demoUsers and demoPosts.
func (s *Store) seed() error {
	users := make([]int64, 0, len(demoUsers))
	for _, in := range demoUsers {
		in.Password = demoPassword
		u, err := s.CreateUser(in)
		if err != nil {
			return fmt.Errorf("seed user %q: %w", in.Username, err)
		}
		users = append(users, u.ID)
	}
	user := func(n int) int64 { return users[n-1] }

	posts := make([]int64, 0, len(demoPosts))
	for i, in := range demoPosts {
		in.UserID = users[i]
		posts = append(posts, s.CreatePost(in).ID)
	}
	post := func(n int) int64 { return posts[n-1] }

	for _, f := range [][2]int{{6, 1}, {6, 2}, {6, 3}, {1, 6}, {2, 6}} {
		s.CreateFollow(user(f[0]), user(f[1]))
	}
	for _, l := range [][2]int{{6, 1}, {6, 2}, {1, 5}, {2, 5}, {3, 5}} {
		s.CreateLike(user(l[0]), post(l[1]))
	}

	s.CreateComment(NewComment{UserID: user(2), PostID: post(1), Content: "Lugar incrível! 😍"})
	s.CreateComment(NewComment{UserID: user(6), PostID: post(2), Content: "Quero fazer essa trilha também!"})

	s.CreateNotification(NewNotification{UserID: user(6), TriggeredByUserID: user(1), Type: NotificationLike, ResourceID: post(5)})
	s.CreateNotification(NewNotification{UserID: user(6), TriggeredByUserID: user(2), Type: NotificationComment, ResourceID: post(2)})
	s.CreateNotification(NewNotification{UserID: user(6), TriggeredByUserID: user(3), Type: NotificationFollow})

	s.logger.Info("demo data seeded",
		zap.Int("users", len(users)),
		zap.Int("posts", len(posts)),
	)
	return nil
}
