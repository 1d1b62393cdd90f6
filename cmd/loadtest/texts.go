package main

var sampleTexts = []string{
	"O gato subiu no telhado. O cão correu no parque. O gato e o cão são amigos.",
	"As redes sociais transformaram a forma como construímos nossa identidade. " +
		"Muitos jovens buscam pertencimento em comunidades digitais. " +
		"A busca por autenticidade, porém, entra em conflito com a exposição constante. " +
		"Especialistas discutem os efeitos dessas plataformas na saúde mental.",
	"O planejamento urbano define o crescimento da cidade. " +
		"Políticas públicas de transporte reduzem o tempo de deslocamento. " +
		"Parques e praças melhoram a qualidade de vida dos moradores. " +
		"Sem investimento contínuo, os bairros periféricos ficam isolados.",
	"A biblioteca municipal reabriu após a reforma. O acervo ganhou novos livros infantis. " +
		"Os leitores elogiaram o espaço amplo e iluminado. A prefeitura pretende ampliar o horário de funcionamento.",
	"Choveu forte durante toda a madrugada! Várias ruas ficaram alagadas. " +
		"A defesa civil emitiu um alerta para a região serrana. " +
		"Os moradores devem evitar áreas de risco até a chuva diminuir.",
	"Uma frase só, sem mais nada.",
	"O Dr. Silva apresentou os resultados da pesquisa. A amostra incluiu mil participantes. " +
		"Os dados mostram melhora significativa na saúde mental dos voluntários.\n\n" +
		"Novos estudos serão realizados no próximo ano.",
}
