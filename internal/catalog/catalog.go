// Package catalog is the static, build-time book catalog. Records are
// defined once and never mutated.
package catalog

type Book struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Price     int    `json:"price"` // whole rupiah
	Desc      string `json:"desc,omitempty"`
	Author    string `json:"author"`
	Publisher string `json:"publisher"`
	Year      int    `json:"year"`
	Category  string `json:"category"`
	LongDesc  string `json:"longDesc,omitempty"`
}

type Catalog struct {
	books []Book
	byID  map[string]Book
}

func New(books []Book) *Catalog {
	byID := make(map[string]Book, len(books))
	for _, b := range books {
		byID[b.ID] = b
	}
	return &Catalog{books: books, byID: byID}
}

// Default returns the bundled bookstore catalog.
func Default() *Catalog { return New(defaultBooks) }

func (c *Catalog) All() []Book {
	out := make([]Book, len(c.books))
	copy(out, c.books)
	return out
}

func (c *Catalog) FindByID(id string) (Book, bool) {
	b, ok := c.byID[id]
	return b, ok
}

var defaultBooks = []Book{
	{
		ID:        "1",
		Title:     "Semua Untuk Hindia",
		Price:     85000,
		Desc:      "Buku sejarah dan kisah Hindia.",
		Author:    "Iksaka Banu",
		Publisher: "Gramedia Pustaka Utama",
		Year:      2018,
		Category:  "Sejarah",
		LongDesc:  "Sebuah kumpulan cerita yang menggambarkan kehidupan masyarakat di masa kolonial Hindia Belanda. Ditulis dengan pendekatan sejarah dan gaya bahasa yang menarik.",
	},
	{
		ID:        "2",
		Title:     "Algoritma",
		Price:     92000,
		Desc:      "Belajar dasar-dasar algoritma untuk pemrograman modern.",
		Author:    "Rinaldi Munir",
		Publisher: "Informatika",
		Year:      2020,
		Category:  "Teknologi",
		LongDesc:  "Buku ini menjelaskan konsep algoritma mulai dari dasar hingga tingkat menengah dengan contoh kasus dunia nyata dan implementasi kode.",
	},
	{
		ID:        "3",
		Title:     "Bahasa Indonesia",
		Price:     78000,
		Desc:      "Materi lengkap bahasa Indonesia untuk pelajar.",
		Author:    "Sugeng Riyanto",
		Publisher: "Erlangga",
		Year:      2022,
		Category:  "Pendidikan",
		LongDesc:  "Membahas materi bahasa Indonesia mulai dari ejaan, sintaksis, paragraf, hingga teks sastra sesuai kurikulum terbaru.",
	},
	{
		ID:        "4",
		Title:     "Buya Hamka",
		Price:     90000,
		Desc:      "Kumpulan karya Buya Hamka.",
		Author:    "Haji Abdul Malik Karim Amrullah",
		Publisher: "Mizan",
		Year:      2019,
		Category:  "Biografi",
		LongDesc:  "Mengungkap perjalanan hidup Buya Hamka, perjuangan intelektual, kisah perjalanan dakwah, dan pemikirannya yang mendalam.",
	},
	{
		ID:        "5",
		Title:     "Mimpi Di Balik Patah Hati",
		Price:     70000,
		Desc:      "Kumpulan puisi dan kisah inspiratif.",
		Author:    "Salsa Purnama",
		Publisher: "GagasMedia",
		Year:      2021,
		Category:  "Romansa",
		LongDesc:  "Buku berisi kisah-kisah motivasi tentang bangkit dari patah hati, disampaikan melalui puisi dan narasi yang menyentuh.",
	},
	{
		ID:        "6",
		Title:     "Pemrograman",
		Price:     110000,
		Desc:      "Panduan pemrograman praktis.",
		Author:    "Ahmad Nazir",
		Publisher: "Deepublish",
		Year:      2020,
		Category:  "Teknologi",
		LongDesc:  "Buku ini membantu pemula memahami cara kerja pemrograman menggunakan contoh nyata dan latihan yang mudah diikuti.",
	},
}
